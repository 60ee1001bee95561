package source

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"

	"github.com/spf13/cast"
	"golang.org/x/time/rate"

	"github.com/tabulate/excel-pipeline/config"
	"github.com/tabulate/excel-pipeline/table"
)

const DefaultUserAgent = "excel-pipeline/1.0"

// API reads a JSON dataset with an HTTP GET request.
type API struct {
	client    *http.Client
	limiter   *rate.Limiter
	userAgent string
	Debug     bool
}

func NewAPI(cfg config.Client) *API {
	limit := rate.Inf
	if cfg.RateLimit > 0 {
		limit = rate.Limit(cfg.RateLimit)
	}

	userAgent := cfg.UserAgent
	if userAgent == "" {
		userAgent = DefaultUserAgent
	}

	return &API{
		client: &http.Client{
			Timeout: cfg.RequestTimeout(),
		},
		limiter:   rate.NewLimiter(limit, 1),
		userAgent: userAgent,
	}
}

func (a *API) Read(ctx context.Context, src config.Source) (*table.Table, error) {
	uri, err := query(src.URL, src.Params)
	if err != nil {
		return nil, &FetchError{Source: src.Name, Err: err}
	}

	if err := a.limiter.Wait(ctx); err != nil {
		return nil, &FetchError{Source: src.Name, Err: err}
	}

	request, err := http.NewRequestWithContext(ctx, http.MethodGet, uri, nil)
	if err != nil {
		return nil, &FetchError{Source: src.Name, Err: err}
	}

	request.Header.Set("Accept", "application/json")
	request.Header.Set("User-Agent", a.userAgent)

	if a.Debug {
		debugf("GET %v", uri)
	}

	response, err := a.client.Do(request)
	if err != nil {
		return nil, &FetchError{Source: src.Name, Err: err}
	}

	defer response.Body.Close()

	body, err := io.ReadAll(response.Body)
	if err != nil {
		return nil, &FetchError{Source: src.Name, Err: err}
	}

	if response.StatusCode < 200 || response.StatusCode > 299 {
		return nil, fetchError(src, "GET %v returned %v", src.URL, response.Status)
	}

	t, err := table.FromJSON(body, src.DataKey)
	if err != nil {
		return nil, &FetchError{Source: src.Name, Err: err}
	}

	return t, nil
}

// query adds the source parameters to the URL query. Lists are encoded as repeated keys,
// everything else is converted to a string.
func query(uri string, params map[string]any) (string, error) {
	u, err := url.Parse(uri)
	if err != nil {
		return "", fmt.Errorf("invalid URL '%s' (%w)", uri, err)
	}

	if u.Scheme != "http" && u.Scheme != "https" {
		return "", fmt.Errorf("invalid URL '%s' (unsupported scheme)", uri)
	}

	if len(params) == 0 {
		return u.String(), nil
	}

	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}

	sort.Strings(keys)

	values := u.Query()
	for _, k := range keys {
		switch v := params[k].(type) {
		case []any:
			for _, item := range v {
				s, err := cast.ToStringE(item)
				if err != nil {
					return "", fmt.Errorf("invalid value for parameter '%s' (%w)", k, err)
				}
				values.Add(k, s)
			}

		case []string:
			for _, item := range v {
				values.Add(k, item)
			}

		default:
			s, err := cast.ToStringE(v)
			if err != nil {
				return "", fmt.Errorf("invalid value for parameter '%s' (%w)", k, err)
			}
			values.Set(k, s)
		}
	}

	u.RawQuery = values.Encode()

	return u.String(), nil
}
