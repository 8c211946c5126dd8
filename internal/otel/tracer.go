package otel

import (
	"go.opentelemetry.io/otel"

	"github.com/adiwardana/commerce/internal/constants"
)

var Tracer = otel.Tracer(constants.AppStorefrontService)
