package httpclients

import (
	"fmt"

	"nestiq.ai/listing-gateway/app/utils/logger"
	"nestiq.ai/listing-gateway/config/environment_variables"
	"resty.dev/v3"
)

// NewClient creates a resty client with the gateway's shared defaults.
// The name shows up in request logs so upstream traffic can be attributed.
func NewClient(name string) *resty.Client {
	client := resty.New()
	client.SetTimeout(environment_variables.EnvironmentVariables.LISTINGHUB_TIMEOUT)
	client.SetHeader("User-Agent", fmt.Sprintf("listing-gateway/%s", name))
	client.AddResponseMiddleware(func(c *resty.Client, resp *resty.Response) error {
		logger.GetLogger().Debugf("%s: %s %s -> %d (%s)", name, resp.Request.Method, resp.Request.URL, resp.StatusCode(), resp.Duration())
		return nil
	})
	return client
}
