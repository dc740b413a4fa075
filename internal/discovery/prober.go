package discovery

import (
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/pawfeeds/companion/internal/models"
)

var probePaths = []string{"/hello", "/status"}

// Prober sweeps a /24 network for pawfeeds devices with bounded-concurrency
// HTTP probes. Individual host failures are absorbed; a scan always completes
// and returns whatever responded.
type Prober struct {
	client      *http.Client
	concurrency int
	log         *zap.Logger
}

func NewProber(timeout time.Duration, concurrency int, log *zap.Logger) *Prober {
	if timeout <= 0 {
		timeout = 3 * time.Second
	}
	if concurrency <= 0 {
		concurrency = 32
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Prober{
		client:      &http.Client{Timeout: timeout},
		concurrency: concurrency,
		log:         log,
	}
}

// Scan probes every other host on the caller's /24 and returns the ones that
// answered, sorted by address. Cancelling ctx stops launching new probes and
// returns whatever has been collected so far.
func (p *Prober) Scan(ctx context.Context, localAddr string) []models.ProbeResult {
	hosts := SubnetHosts(localAddr)
	if len(hosts) == 0 {
		p.log.Warn("no usable local network, skipping scan", zap.String("local", localAddr))
		return nil
	}

	results := make(chan models.ProbeResult, len(hosts))
	sem := make(chan struct{}, p.concurrency)
	var wg sync.WaitGroup

launch:
	for _, host := range hosts {
		if ctx.Err() != nil {
			break
		}
		select {
		case <-ctx.Done():
			break launch
		case sem <- struct{}{}:
		}

		wg.Add(1)
		go func(host string) {
			defer wg.Done()
			defer func() { <-sem }()

			if res, ok := p.probeHost(ctx, host); ok {
				p.log.Debug("probe hit",
					zap.String("host", host),
					zap.String("hostname", res.Hostname),
					zap.String("role", string(res.Role)))
				results <- res
			}
		}(host)
	}

	go func() {
		wg.Wait()
		close(results)
	}()

	var hits []models.ProbeResult
	for res := range results {
		hits = append(hits, res)
	}
	sort.Slice(hits, func(i, j int) bool { return hits[i].Address < hits[j].Address })

	p.log.Info("scan complete", zap.Int("hits", len(hits)))
	return hits
}

// ScanAny is the best-effort sweep behind "find anything on my network": one
// /status probe per host, returning every address that answered 2xx.
func (p *Prober) ScanAny(ctx context.Context, localAddr string) []string {
	hosts := SubnetHosts(localAddr)
	if len(hosts) == 0 {
		return nil
	}

	found := make(chan string, len(hosts))
	sem := make(chan struct{}, p.concurrency)
	var wg sync.WaitGroup

launch:
	for _, host := range hosts {
		if ctx.Err() != nil {
			break
		}
		select {
		case <-ctx.Done():
			break launch
		case sem <- struct{}{}:
		}

		wg.Add(1)
		go func(host string) {
			defer wg.Done()
			defer func() { <-sem }()

			if _, ok := p.get(ctx, host, "/status"); ok {
				found <- host
			}
		}(host)
	}

	go func() {
		wg.Wait()
		close(found)
	}()

	var addrs []string
	for addr := range found {
		addrs = append(addrs, addr)
	}
	sort.Strings(addrs)
	return addrs
}

// probeHost tries each probe endpoint on one host. The host is a hit when any
// endpoint returns 2xx; fields missing from one endpoint's body may be filled
// by the other.
func (p *Prober) probeHost(ctx context.Context, host string) (models.ProbeResult, bool) {
	res := models.ProbeResult{Address: host, Role: models.RoleUnknown, Connected: true}
	declaredRole := ""
	hit := false

	for _, path := range probePaths {
		body, ok := p.get(ctx, host, path)
		if !ok {
			continue
		}
		hit = true

		st := parseDeviceStatus(body)
		if res.Hostname == "" {
			res.Hostname = st.Hostname
		}
		if declaredRole == "" {
			declaredRole = st.Role
		}
		if res.ContainerWeightGrams == 0 {
			res.ContainerWeightGrams = st.Weight
		}
		res.Connected = res.Connected && st.Connected
	}

	if !hit {
		return models.ProbeResult{}, false
	}
	res.Role = classify(declaredRole, res.Hostname)
	return res, true
}

// get returns the response body and whether the endpoint answered 2xx.
// Transport errors and non-2xx statuses are treated as "no response".
func (p *Prober) get(ctx context.Context, host, path string) ([]byte, bool) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, "http://"+host+path, nil)
	if err != nil {
		return nil, false
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, false
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, false
	}

	// A body read failure past a 2xx status is still a hit, just with no
	// extractable fields.
	body, err := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if err != nil {
		return nil, true
	}
	return body, true
}

// SubnetHosts expands the caller's IPv4 address into the 254 other host
// addresses of its assumed /24. A non-IPv4 input yields nil.
func SubnetHosts(localAddr string) []string {
	ip := net.ParseIP(localAddr)
	if ip == nil {
		return nil
	}
	ip4 := ip.To4()
	if ip4 == nil {
		return nil
	}

	local := ip4.String()
	hosts := make([]string, 0, 254)
	for host := 1; host <= 254; host++ {
		addr := fmt.Sprintf("%d.%d.%d.%d", ip4[0], ip4[1], ip4[2], host)
		if addr == local {
			continue
		}
		hosts = append(hosts, addr)
	}
	return hosts
}
