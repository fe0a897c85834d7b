package inference

import (
	"log"
	"net"
	"strconv"

	"infragraph/internal/domain"
)

// BackendMatchResult is the outcome of resolving proxy backends to services
type BackendMatchResult struct {
	Matches []Match

	// Matched counts proxies with at least one service
	Matched int
	// Unmatched lists proxies whose backend resolved to no service
	Unmatched []string
	// Loopback lists proxies skipped for a loopback backend
	Loopback []string
	// Incomplete lists proxies without a backend host or port
	Incomplete []string
}

// ResolveBackends follows each proxy's backend address through the fleet:
// a container publishing the backend port, the server named in the
// container's id, and that server's primary address. Only a full chain
// ending in a container with part_of_service yields a match, so an equal
// port on an unrelated host never links a service.
func ResolveBackends(c *Catalog, opts Options) BackendMatchResult {
	var result BackendMatchResult

	for _, proxy := range c.ProxyHosts {
		host := proxy.LookupString("backend_host")
		port, hasPort := proxy.LookupPort("backend_port")
		if host == "" || !hasPort || port == 0 {
			if opts.Verbose {
				log.Printf("Proxy %s missing backend configuration", proxy.ID)
			}
			result.Incomplete = append(result.Incomplete, proxy.ID)
			continue
		}

		if opts.isLoopback(host) {
			if opts.Verbose {
				log.Printf("Skipping proxy %s with loopback backend %s", proxy.ID, host)
			}
			result.Loopback = append(result.Loopback, proxy.ID)
			continue
		}

		services := servicesBehind(c, host, port, opts.Verbose)
		if len(services) == 0 {
			log.Printf("Warning: no matching service found for proxy %s (backend %s)",
				proxy.ID, net.JoinHostPort(host, strconv.Itoa(port)))
			result.Unmatched = append(result.Unmatched, proxy.ID)
			continue
		}

		result.Matched++
		protocol := opts.protocol(proxy)
		key := net.JoinHostPort(host, strconv.Itoa(port))
		for _, serviceID := range services {
			result.Matches = append(result.Matches, Match{
				SourceID:   proxy.ID,
				SourceType: domain.EntityTypeProxyHost,
				TargetID:   serviceID,
				TargetType: domain.EntityTypeService,
				Relation:   domain.RelationProxies,
				Method:     domain.MatchingMethodIPPort,
				Key:        key,
				Attributes: map[string]any{
					domain.MetaBackendHost:     host,
					domain.MetaBackendPort:     port,
					domain.MetaBackendProtocol: protocol,
				},
			})
			if opts.Verbose {
				log.Printf("Matched proxy %s (%s) to service %s", proxy.ID, key, serviceID)
			}
		}
	}

	return result
}

// servicesBehind returns the distinct services reachable at host:port, in
// the order their containers appear in the store.
func servicesBehind(c *Catalog, host string, port int, verbose bool) []string {
	var services []string
	seen := make(map[string]bool)

	for _, container := range c.Containers {
		if !publishesPort(container, port) {
			continue
		}

		serverName, ok := container.Ref.ServerName()
		if !ok {
			if verbose {
				log.Printf("Cannot extract server name from container id %s", container.ID)
			}
			continue
		}

		servers := c.ServersNamed(serverName)
		if len(servers) == 0 {
			if verbose {
				log.Printf("No server found for name %s (from container %s)", serverName, container.ID)
			}
			continue
		}
		if !anyServerAt(servers, host) {
			continue
		}

		serviceID := container.LookupString("part_of_service")
		if serviceID == "" {
			if verbose {
				log.Printf("Container %s not part of any service", container.ID)
			}
			continue
		}
		if !seen[serviceID] {
			seen[serviceID] = true
			services = append(services, serviceID)
		}
	}

	return services
}

func publishesPort(container domain.Document, port int) bool {
	for _, b := range container.PortBindings() {
		if b.HostPort == port {
			return true
		}
	}
	return false
}

func anyServerAt(servers []domain.Document, host string) bool {
	for _, server := range servers {
		if server.LookupString("primary_ip") == host {
			return true
		}
	}
	return false
}
