// Package plugin adapts the TTL accessor to a host plugin framework: request
// handlers that answer with {success, result} and lifecycle hooks.
package plugin

import (
	"context"

	"go.uber.org/zap"

	"github.com/KilimcininKorOglu/ttlctl/internal/ttl"
)

// Name is the display name used in lifecycle log messages.
const Name = "Change TTL Plugin"

// Response is the envelope every handler returns to the host.
// Result holds the payload on success and the error text on failure.
type Response struct {
	ID      interface{} `json:"id,omitempty"`
	Success bool        `json:"success"`
	Result  interface{} `json:"result,omitempty"`
}

// Succeed builds a successful response.
func Succeed(result interface{}) Response {
	return Response{Success: true, Result: result}
}

// Fail builds a failed response carrying err's message.
func Fail(err error) Response {
	return Response{Success: false, Result: err.Error()}
}

// Plugin exposes get/set handlers and lifecycle hooks.
type Plugin struct {
	accessor *ttl.Accessor
	log      *zap.SugaredLogger
}

// New creates a plugin backed by accessor.
func New(accessor *ttl.Accessor, log *zap.SugaredLogger) *Plugin {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &Plugin{accessor: accessor, log: log}
}

// Get returns the current TTL values.
func (p *Plugin) Get(ctx context.Context) Response {
	reading, err := p.accessor.Get(ctx)
	if err != nil {
		return Fail(err)
	}
	return Succeed(reading)
}

// Set applies value to both families. The value is forwarded as given.
func (p *Plugin) Set(ctx context.Context, value string) Response {
	if err := p.accessor.SetValue(ctx, value); err != nil {
		return Fail(err)
	}
	return Response{Success: true}
}

// Start is called when the host loads the plugin.
func (p *Plugin) Start(ctx context.Context) {
	p.log.Infof("%s loaded", Name)
}

// Unload is called first when the host unloads the plugin.
func (p *Plugin) Unload(ctx context.Context) {
	p.log.Infof("%s unloaded", Name)
}

// Uninstall is called when the plugin is removed.
func (p *Plugin) Uninstall(ctx context.Context) {
	p.log.Infof("%s uninstalled", Name)
}
