package visited

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"been-map/internal/catalog"
	"been-map/internal/identity"
)

// 文档注释：visited-countries REST 资源客户端
// 背景：GET {base}/visited-countries 返回 {"visited_countries":[{"country_code":..}]}；
// POST 同路径新增 {country_code,country_name,continent}；DELETE {base}/visited-countries/{code} 删除。
// 约束：非 2xx 视为失败；不重试。
type HTTPBackend struct {
	Base   string
	Client *http.Client
}

func NewHTTPBackend(base string, timeout time.Duration) *HTTPBackend {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &HTTPBackend{Base: strings.TrimRight(base, "/"), Client: &http.Client{Timeout: timeout}}
}

type visitedEntry struct {
	CountryCode string `json:"country_code"`
	CountryName string `json:"country_name,omitempty"`
	Continent   string `json:"continent,omitempty"`
}

type visitedList struct {
	VisitedCountries []visitedEntry `json:"visited_countries"`
}

func (b *HTTPBackend) Snapshot(ctx context.Context) (Set, error) {
	var out visitedList
	if err := b.do(ctx, http.MethodGet, "/visited-countries", nil, &out); err != nil {
		return Set{}, err
	}
	codes := make([]identity.Code, 0, len(out.VisitedCountries))
	for _, e := range out.VisitedCountries {
		codes = append(codes, identity.Code(strings.ToUpper(strings.TrimSpace(e.CountryCode))))
	}
	return NewSet(codes...), nil
}

func (b *HTTPBackend) Add(ctx context.Context, c catalog.Country) error {
	body := visitedEntry{CountryCode: string(c.Code), CountryName: c.Name, Continent: c.Continent}
	return b.do(ctx, http.MethodPost, "/visited-countries", body, nil)
}

func (b *HTTPBackend) Remove(ctx context.Context, code identity.Code) error {
	return b.do(ctx, http.MethodDelete, "/visited-countries/"+url.PathEscape(string(code)), nil, nil)
}

func (b *HTTPBackend) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		buf, err := json.Marshal(in)
		if err != nil {
			return err
		}
		body = bytes.NewReader(buf)
	}
	req, err := http.NewRequestWithContext(ctx, method, b.Base+path, body)
	if err != nil {
		return err
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := b.Client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("%s %s: unexpected status %d", method, path, resp.StatusCode)
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

// MemoryBackend：进程内集合，未配置外部资源时使用
type MemoryBackend struct {
	mu      sync.RWMutex
	visited map[identity.Code]catalog.Country
}

func NewMemoryBackend(initial ...catalog.Country) *MemoryBackend {
	m := &MemoryBackend{visited: make(map[identity.Code]catalog.Country)}
	for _, c := range initial {
		m.visited[c.Code] = c
	}
	return m
}

func (m *MemoryBackend) Snapshot(context.Context) (Set, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	codes := make([]identity.Code, 0, len(m.visited))
	for c := range m.visited {
		codes = append(codes, c)
	}
	return NewSet(codes...), nil
}

func (m *MemoryBackend) Add(_ context.Context, c catalog.Country) error {
	m.mu.Lock()
	m.visited[c.Code] = c
	m.mu.Unlock()
	return nil
}

func (m *MemoryBackend) Remove(_ context.Context, code identity.Code) error {
	m.mu.Lock()
	delete(m.visited, code)
	m.mu.Unlock()
	return nil
}
