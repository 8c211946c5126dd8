package constants

const (
	AppStorefrontService = "storefront-service"
	AppOrderService      = "order-service"

	ChannelCartEvents = "cart-events"
)
