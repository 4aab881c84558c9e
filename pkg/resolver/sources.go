package resolver

import "context"

// HostSource resolves one fixed hostname on every call. It satisfies the
// recency cache's address source contract.
type HostSource struct {
	resolver *Resolver
	host     string
}

// Host binds the resolver to a hostname
func (r *Resolver) Host(host string) *HostSource {
	return &HostSource{resolver: r, host: host}
}

// Addresses resolves the bound hostname's A and AAAA records
func (s *HostSource) Addresses(ctx context.Context) ([]string, error) {
	return s.resolver.LookupHost(ctx, s.host)
}

// ServiceSource resolves one fixed SRV name within a priority band on every
// call. It satisfies the recency cache's address source contract.
type ServiceSource struct {
	resolver *Resolver
	service  string
	band     PriorityBand
}

// Service binds the resolver to an SRV name and priority band
func (r *Resolver) Service(name string, band PriorityBand) *ServiceSource {
	return &ServiceSource{resolver: r, service: name, band: band}
}

// Addresses resolves the bound SRV name's in-band targets
func (s *ServiceSource) Addresses(ctx context.Context) ([]string, error) {
	return s.resolver.LookupService(ctx, s.service, s.band)
}
