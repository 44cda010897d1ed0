package currency

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net/http"
	"strings"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"
)

// ErrRateUnavailable is returned when no conversion rate exists for a
// currency, neither live nor in the fallback table.
var ErrRateUnavailable = errors.New("exchange rate unavailable")

type cachedRate struct {
	rate      float64
	fetchedAt time.Time
}

// Normalizer converts site-native amounts into the home currency.
// It prefers a live rate source with a time-bounded cache and falls back to
// the fixed table on any error, so normalization never fails hard for a
// currency the table knows.
type Normalizer struct {
	home     string
	fallback map[string]float64
	apiURL   string
	ttl      time.Duration
	client   *http.Client
	now      func() time.Time

	mu    sync.Mutex
	cache map[string]cachedRate
}

// NewNormalizer builds a normalizer for the given home currency. apiURL may
// be empty to disable live lookups and use the fixed table only.
func NewNormalizer(home string, fallback map[string]float64, apiURL string, ttl time.Duration) *Normalizer {
	rates := make(map[string]float64, len(fallback))
	for code, rate := range fallback {
		rates[strings.ToUpper(code)] = rate
	}
	return &Normalizer{
		home:     strings.ToUpper(home),
		fallback: rates,
		apiURL:   strings.TrimRight(apiURL, "/"),
		ttl:      ttl,
		client:   &http.Client{Timeout: 10 * time.Second},
		now:      time.Now,
		cache:    make(map[string]cachedRate),
	}
}

// Home returns the home currency code.
func (n *Normalizer) Home() string {
	return n.home
}

// Normalize converts amount in fromCurrency to a rounded home-currency
// amount. The identity case returns the amount untouched.
func (n *Normalizer) Normalize(amount float64, fromCurrency string) (float64, error) {
	from := strings.ToUpper(fromCurrency)
	if from == n.home {
		return amount, nil
	}

	rate, err := n.rate(from)
	if err != nil {
		return 0, err
	}
	return math.Round(amount * rate), nil
}

func (n *Normalizer) rate(from string) (float64, error) {
	n.mu.Lock()
	cached, ok := n.cache[from]
	n.mu.Unlock()
	if ok && n.now().Sub(cached.fetchedAt) < n.ttl {
		return cached.rate, nil
	}

	if n.apiURL != "" {
		if rate, err := n.fetchLiveRate(from); err == nil {
			n.mu.Lock()
			n.cache[from] = cachedRate{rate: rate, fetchedAt: n.now()}
			n.mu.Unlock()
			return rate, nil
		} else {
			log.WithFields(log.Fields{"currency": from}).Warnf("Live rate fetch failed, using fallback: %v", err)
		}
	}

	if rate, ok := n.fallback[from]; ok {
		return rate, nil
	}
	return 0, fmt.Errorf("%w: %s->%s", ErrRateUnavailable, from, n.home)
}

func (n *Normalizer) fetchLiveRate(from string) (float64, error) {
	resp, err := n.client.Get(fmt.Sprintf("%s/%s", n.apiURL, from))
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("rate API returned %d", resp.StatusCode)
	}

	var payload struct {
		Rates map[string]float64 `json:"rates"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return 0, err
	}

	rate, ok := payload.Rates[n.home]
	if !ok || rate <= 0 {
		return 0, fmt.Errorf("rate API has no %s rate", n.home)
	}
	return rate, nil
}
