package log

const (
	KeyAppName       = "app"
	KeyTag           = "tag"
	KeyProcess       = "process"
	KeyRequestID     = "requestId"
	KeyConfig        = "config"
	KeyCacheKey      = "cacheKey"
	KeySessionID     = "sessionId"
	KeyProductID     = "productId"
	KeyBundleID      = "bundleId"
	KeyOrderID       = "orderId"
	KeyVariantKey    = "variantKey"
	KeyQuantity      = "quantity"
	KeyCartEvent     = "cartEvent"
	KeyEntries       = "entries"
	KeySubtotal      = "subtotal"
	KeyTotal         = "total"
	KeyQuote         = "quote"
	KeyCoupon        = "couponCode"
	KeyState         = "checkoutState"
	KeySequence      = "sequence"
	KeyContentHash   = "contentHash"
	KeyPaymentStatus = "paymentStatus"

	KeyRequestBody   = "requestBody"
	KeyRequestHeader = "requestHeader"
	KeyRequestHost   = "host"
	KeyRequestIp     = "requesterIP"
	KeyRequestMethod = "requestMethod"
	KeyRequestURI    = "requestURI"
	KeyRequestURL    = "requestURL"
	KeyPathValues    = "pathValues"
)
