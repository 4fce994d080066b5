// Package clientip extracts the originating client address from an HTTP
// request that may have passed through proxies or a CDN.
//
// Headers are checked in this order, first valid address wins:
//  1. CF-Connecting-IP (Cloudflare)
//  2. DO-Connecting-IP (DigitalOcean)
//  3. X-Forwarded-For (leftmost entry)
//  4. X-Real-IP
//  5. RemoteAddr
//
// Addresses are validated with net.ParseIP and normalized; 0.0.0.0 and
// unspecified IPv6 are rejected. When nothing valid is found the raw
// RemoteAddr is returned, so GetIP never returns an error.
//
//	log.Info("request", slog.String("client_ip", clientip.GetIP(r)))
//
// Proxy headers are trivially spoofed by direct clients. Use the result for
// logging, never for authorization.
package clientip
