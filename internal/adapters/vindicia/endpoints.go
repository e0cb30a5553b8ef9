package vindicia

import (
	"fmt"

	"github.com/omnibill/vindicia/internal/adapters/ports"
	"github.com/omnibill/vindicia/internal/config"
)

// APIVersion is embedded in every call and in every endpoint path
const APIVersion = "18.0"

const (
	liveEndpoint = "https://soap.vindicia.com"
	testEndpoint = "https://soap.prodtest.vindicia.com"
)

// baseEndpoint selects the fixed live or test base URL
func baseEndpoint(cfg *config.Config) string {
	if cfg.TestMode {
		return testEndpoint
	}
	return liveEndpoint
}

// wsdlURL is the schema-discovery URL for an object type
func wsdlURL(cfg *config.Config, objectType string) string {
	return fmt.Sprintf("%s/%s/%s.wsdl", baseEndpoint(cfg), APIVersion, objectType)
}

// soapURL is the invocation URL shared by all object types
func soapURL(cfg *config.Config) string {
	return fmt.Sprintf("%s/v%s/soap.pl", baseEndpoint(cfg), APIVersion)
}

// buildAuth builds the fixed-shape auth sub-object carried by every
// call. The evid and userAgent fields are legacy and always null.
func buildAuth(cfg *config.Config) *ports.Object {
	auth := ports.NewObject("Authentication")
	auth.Set("version", APIVersion)
	auth.Set("login", cfg.Login)
	auth.Set("password", cfg.Password)
	auth.Set("evid", nil)
	auth.Set("userAgent", nil)
	return auth
}
