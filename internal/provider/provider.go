// Package provider implements contribution-count clients for each supported
// forge and the registry the aggregator resolves them from.
package provider

import (
	"context"
	"sort"
	"strings"

	"github.com/jengzang/forgeheat/internal/models"
)

// Credentials identify one account on one forge
type Credentials struct {
	Username string
	Token    string
	BaseURL  string
}

// Client converts credentials into per-day contribution counts.
//
// Implementations hold only immutable configuration and are safe for
// concurrent use. Returned counts may be unsorted and may repeat a date
type Client interface {
	Name() string
	GetStats(ctx context.Context, creds Credentials) ([]models.DailyCount, error)
}

// Registry is an immutable, case-insensitive lookup of clients
type Registry struct {
	clients map[string]Client
	names   []string
}

// NewRegistry builds a registry. A later client with the same name replaces
// an earlier one
func NewRegistry(clients ...Client) *Registry {
	r := &Registry{clients: make(map[string]Client, len(clients))}
	for _, c := range clients {
		key := strings.ToLower(c.Name())
		if _, ok := r.clients[key]; !ok {
			r.names = append(r.names, c.Name())
		}
		r.clients[key] = c
	}
	sort.Strings(r.names)
	return r
}

// Lookup resolves a client by name, ignoring case
func (r *Registry) Lookup(name string) (Client, bool) {
	c, ok := r.clients[strings.ToLower(strings.TrimSpace(name))]
	return c, ok
}

// Names returns the registered client names in sorted order
func (r *Registry) Names() []string {
	out := make([]string, len(r.names))
	copy(out, r.names)
	return out
}
