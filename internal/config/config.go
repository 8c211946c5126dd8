package config

import (
	"context"
	"fmt"
	"sync"

	"github.com/rs/zerolog"
	"github.com/spf13/viper"

	"github.com/adiwardana/commerce/internal/log"
)

type Application struct {
	Env  string `mapstructure:"env"  json:"env"`
	Host string `mapstructure:"host" json:"host"`
	Port int    `mapstructure:"port" json:"port"`
}

type Database struct {
	Name           string `mapstructure:"name"            json:"name"`
	Host           string `mapstructure:"host"            json:"host"`
	MigrationPath  string `mapstructure:"migration_path"  json:"migration_path"`
	Password       string `mapstructure:"password"        json:"password"`
	Username       string `mapstructure:"username"        json:"username"`
	MaxConnections int    `mapstructure:"max_connections" json:"max_connections"`
	MinConnections int    `mapstructure:"min_connections" json:"min_connections"`
	Port           uint16 `mapstructure:"port"            json:"port"`
}

type Cache struct {
	Host     string `mapstructure:"host"     json:"host"`
	Password string `mapstructure:"password" json:"password"`
	Database int    `mapstructure:"database" json:"database"`
	Port     uint16 `mapstructure:"port"     json:"port"`
}

type Otel struct {
	Host string `mapstructure:"host" json:"host"`
	Port int    `mapstructure:"port" json:"port"`
}

// Services holds base URLs of the external collaborators the core
// consumes: catalog lookups, coupon validation, shipping rules,
// bundle-discount calculation, order creation and the payment gateway.
type Services struct {
	CatalogURL        string `mapstructure:"catalog_url"         json:"catalog_url"`
	CouponURL         string `mapstructure:"coupon_url"          json:"coupon_url"`
	ShippingURL       string `mapstructure:"shipping_url"        json:"shipping_url"`
	BundleDiscountURL string `mapstructure:"bundle_discount_url" json:"bundle_discount_url"`
	OrderURL          string `mapstructure:"order_url"           json:"order_url"`
	PaymentGatewayURL string `mapstructure:"payment_gateway_url" json:"payment_gateway_url"`
	ReturnURL         string `mapstructure:"return_url"          json:"return_url"`
}

type Pricing struct {
	Currency             string `mapstructure:"currency"               json:"currency"`
	Region               string `mapstructure:"region"                 json:"region"`
	DebounceMillis       int    `mapstructure:"debounce_millis"        json:"debounce_millis"`
	AdvisorFlexCap       string `mapstructure:"advisor_flex_cap"       json:"advisor_flex_cap"`
	FallbackShippingCost string `mapstructure:"fallback_shipping_cost" json:"fallback_shipping_cost"`
}

type Config struct {
	Database    `mapstructure:"db"          json:"db"`
	Cache       `mapstructure:"cache"       json:"cache"`
	Application `mapstructure:"application" json:"application"`
	Otel        `mapstructure:"otel"        json:"otel"`
	Services    `mapstructure:"services"    json:"services"`
	Pricing     `mapstructure:"pricing"     json:"pricing"`
}

var (
	once   sync.Once
	config *Config
)

func InitConfig(c context.Context, filename string) *Config {
	cfg := Config{}
	once.Do(func() {
		logger := zerolog.Ctx(c).
			With().
			Str(log.KeyTag, "main InitConfig").
			Str(log.KeyProcess, "init config").
			Str("filename", filename).
			Logger()

		viper.SetConfigName(filename)
		viper.AddConfigPath("./env")
		viper.SetConfigType("yaml")
		viper.AutomaticEnv()

		logger = logger.With().Str(log.KeyProcess, "reading config").Logger()
		logger.Info().Msg("reading config")
		err := viper.ReadInConfig()
		if err != nil {
			err = fmt.Errorf("error when reading config with error=%w", err)
			logger.Fatal().Err(err).Msg(err.Error())
		}
		logger.Info().Msg("read config")

		logger = logger.With().Str(log.KeyProcess, "unmarshaling config").Logger()
		logger.Info().Msg("unmarshaling config")
		err = viper.Unmarshal(&cfg)
		if err != nil {
			err = fmt.Errorf("error unmarshaling config with error=%w", err)
			logger.Fatal().Err(err).Msg(err.Error())
		}
		config = &cfg
		logger = logger.With().Any(log.KeyConfig, cfg).Logger()
		logger.Info().Msg("unmarshaled config")
	})
	return config
}
