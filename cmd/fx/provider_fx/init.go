package provider_fx

import (
	"log"
	"os"

	"go.uber.org/fx"

	"pointfetch/internal/provider"
)

var Module = fx.Provide(
	provideProviderClient,
)

func provideProviderClient() provider.Client {
	baseURL := os.Getenv("PROVIDER_BASE_URL")
	if baseURL == "" {
		log.Println("PROVIDER_BASE_URL not set, provider calls will fail")
	}
	return provider.NewClient(baseURL, os.Getenv("PROVIDER_API_KEY"))
}
