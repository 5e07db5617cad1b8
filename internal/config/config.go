package config

type Config struct {
	Environment Environment
	Log         Log
	HTTP        HTTPServer
	BaseURL     string `env:"BASE_URL" envDefault:"http://localhost:8080"`
	DatabaseURL string `env:"DATABASE_URL" envDefault:"labelmart.db"`

	// Flat price charged per shipping label, in USD cents.
	LabelPriceCents int64 `env:"LABEL_PRICE_CENTS" envDefault:"499"`

	Auth     Auth     `envPrefix:"AUTH_"`
	Commerce Commerce `envPrefix:"COMMERCE_"`
}

// Commerce holds credentials for the hosted-payment gateway.
type Commerce struct {
	BaseApiURL    string `env:"BASE_API_URL" envDefault:"https://api.commerce.coinbase.com"`
	APIKey        string `env:"API_KEY"`
	WebhookSecret string `env:"WEBHOOK_SECRET"`
	RedirectURL   string `env:"REDIRECT_URL"`
}

type Auth struct {
	// Secret for verifying pre-issued HS256 session tokens. Token issuance
	// lives in the auth service, not here.
	JWTSecret  string `env:"JWT_SECRET"`
	AdminToken string `env:"ADMIN_TOKEN"`
}

type Environment struct {
	Name string `env:"ENVIRONMENT" envDefault:"development"`
}

type Log struct {
	Level  string `env:"LOG_LEVEL" envDefault:"info"`
	Format string `env:"LOG_FORMAT" envDefault:"json"`
}

type HTTPServer struct {
	Host string `env:"HTTP_HOST" envDefault:"0.0.0.0"`
	Port string `env:"HTTP_PORT" envDefault:"8080"`
}
