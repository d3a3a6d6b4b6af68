package recorder

import (
	"context"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"

	"sitewatch/db/repo"
	"sitewatch/geo"
	"sitewatch/metrics"
	"sitewatch/model"
)

// EchoClient is the public-IP echo lookup used when the caller connects
// over loopback.
type EchoClient interface {
	PublicIP(ctx context.Context) (string, error)
}

type Recorder struct {
	storage  repo.IVisitorLogStorage
	resolver geo.Resolver
	echo     EchoClient
	logger   *slog.Logger
	now      func() time.Time
}

func New(storage repo.IVisitorLogStorage, resolver geo.Resolver, echo EchoClient, logger *slog.Logger) *Recorder {
	return &Recorder{
		storage:  storage,
		resolver: resolver,
		echo:     echo,
		logger:   logger,
		now:      time.Now,
	}
}

// Record builds one VisitorEvent from the request and appends it to the
// log. Enrichment failures downgrade the affected field to "Unknown"
// and never stop the write; only a failed append comes back as an error.
func (rec *Recorder) Record(ctx context.Context, r *http.Request) error {
	ip := clientIP(r)

	if isLoopback(ip) {
		public, err := rec.echo.PublicIP(ctx)
		if err != nil {
			rec.logger.Warn("public ip lookup failed", "error", err)
			metrics.EnrichmentFailures.WithLabelValues("ip_echo").Inc()
			ip = model.Unknown
		} else {
			ip = public
		}
	}

	location := model.Unknown
	if ip != model.Unknown {
		loc, err := rec.resolver.Resolve(ctx, ip)
		if err != nil {
			rec.logger.Warn("geolocation lookup failed", "ip", ip, "error", err)
			metrics.EnrichmentFailures.WithLabelValues("geolocation").Inc()
		} else {
			location = loc.String()
		}
	}

	browser := r.UserAgent()
	if browser == "" {
		browser = model.Unknown
	}

	visit := model.VisitorEvent{
		IP:       ip,
		Browser:  browser,
		Time:     rec.now().UTC().Format(model.TimeLayout),
		Location: location,
	}

	return rec.storage.AppendVisit(ctx, visit)
}

// clientIP picks the caller's address: the Client-Ip header wins, then
// the first X-Forwarded-For entry, then the transport remote address.
func clientIP(r *http.Request) string {
	if ip := r.Header.Get("Client-Ip"); ip != "" {
		return ip
	}
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		return strings.TrimSpace(strings.Split(fwd, ",")[0])
	}
	if r.RemoteAddr != "" {
		if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
			return host
		}
		return r.RemoteAddr
	}
	return "0.0.0.0"
}

func isLoopback(ip string) bool {
	return ip == "127.0.0.1" || ip == "::1"
}
