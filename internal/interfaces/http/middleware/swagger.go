package middleware

import (
	"fmt"
	"net/http"
	"net/netip"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/manarainnovate/Le-Tatche-bois-v280126.01-sub010/internal/interfaces/http/dto"
)

// SwaggerConfig guards the API documentation.
type SwaggerConfig struct {
	Enabled bool
	// RequireAuth runs the JWT middleware before serving the docs.
	RequireAuth bool
	// AllowedIPs restricts access to addresses or CIDR ranges. Empty allows all.
	AllowedIPs []string
}

// SwaggerProtection serves 404 when the docs are disabled and otherwise
// applies the IP allow list, then authentication.
func SwaggerProtection(cfg SwaggerConfig, jwtMiddleware gin.HandlerFunc) (gin.HandlerFunc, error) {
	allowed, err := parsePrefixes(cfg.AllowedIPs)
	if err != nil {
		return nil, err
	}

	return func(c *gin.Context) {
		if !cfg.Enabled {
			abortWithError(c, http.StatusNotFound, dto.ErrCodeNotFound, "Documentation indisponible")
			return
		}
		if len(allowed) > 0 && !ipAllowed(c.ClientIP(), allowed) {
			abortWithError(c, http.StatusForbidden, dto.ErrCodeForbidden, "Accès à la documentation restreint")
			return
		}
		if cfg.RequireAuth && jwtMiddleware != nil {
			if jwtMiddleware(c); c.IsAborted() {
				return
			}
		}
		c.Next()
	}, nil
}

// parsePrefixes reads single addresses as /32 or /128 prefixes.
func parsePrefixes(entries []string) ([]netip.Prefix, error) {
	prefixes := make([]netip.Prefix, 0, len(entries))
	for _, entry := range entries {
		entry = strings.TrimSpace(entry)
		if strings.Contains(entry, "/") {
			p, err := netip.ParsePrefix(entry)
			if err != nil {
				return nil, fmt.Errorf("swagger allowed ip %q: %w", entry, err)
			}
			prefixes = append(prefixes, p.Masked())
			continue
		}
		addr, err := netip.ParseAddr(entry)
		if err != nil {
			return nil, fmt.Errorf("swagger allowed ip %q: %w", entry, err)
		}
		prefixes = append(prefixes, netip.PrefixFrom(addr.Unmap(), addr.Unmap().BitLen()))
	}
	return prefixes, nil
}

func ipAllowed(ip string, allowed []netip.Prefix) bool {
	addr, err := netip.ParseAddr(ip)
	if err != nil {
		return false
	}
	addr = addr.Unmap()
	for _, p := range allowed {
		if p.Contains(addr) {
			return true
		}
	}
	return false
}
