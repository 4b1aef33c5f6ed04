// Package cookies keeps per-host cookies for scraping sources and imports
// them from Netscape cookie jar files.
package cookies

import (
	"bufio"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"os"
	"sort"
	"strings"
	"sync"

	"golang.org/x/net/publicsuffix"

	"github.com/mantonx/amalgam/internal/logger"
)

// Store holds cookies keyed by host. A host may carry a leading dot to
// cover its subdomains.
type Store struct {
	mu    sync.RWMutex
	hosts map[string]map[string]string
}

func NewStore() *Store {
	return &Store{hosts: make(map[string]map[string]string)}
}

// Cookies returns a copy of the cookies for u's host, falling back to the
// dotted form of the host. The result is never nil.
func (s *Store) Cookies(u *url.URL) map[string]string {
	result := make(map[string]string)
	if u == nil {
		return result
	}

	host := u.Hostname()

	s.mu.RLock()
	defer s.mu.RUnlock()

	cookies, ok := s.hosts[host]
	if !ok {
		cookies = s.hosts["."+host]
	}
	for name, value := range cookies {
		result[name] = value
	}
	return result
}

// Add merges cookies into the host's existing set
func (s *Store) Add(host string, cookies map[string]string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.hosts[host]
	if !ok {
		existing = make(map[string]string, len(cookies))
		s.hosts[host] = existing
	}
	for name, value := range cookies {
		existing[name] = value
	}
}

// Hosts lists every host with cookies, sorted
func (s *Store) Hosts() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	hosts := make([]string, 0, len(s.hosts))
	for host := range s.hosts {
		hosts = append(hosts, host)
	}
	sort.Strings(hosts)
	return hosts
}

// LoadCookieJar imports a Netscape format cookie file. Lines with fewer
// than seven tab separated fields are ignored. A missing file is not an
// error.
func (s *Store) LoadCookieJar(path string) error {
	if path == "" {
		return nil
	}

	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("failed to open cookie jar: %w", err)
	}
	defer f.Close()

	loaded := 0
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		parts := strings.Split(line, "\t")
		if len(parts) < 7 {
			continue
		}
		s.Add(parts[0], map[string]string{parts[5]: parts[6]})
		loaded++
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("failed to read cookie jar %s: %w", path, err)
	}

	logger.Debug("Loaded cookie jar", "path", path, "cookies", loaded)
	return nil
}

// Jar copies the store into a net/http cookie jar that respects the public
// suffix list
func (s *Store) Jar() (http.CookieJar, error) {
	jar, err := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
	if err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	for host, cookies := range s.hosts {
		name := strings.TrimPrefix(host, ".")
		if name == "" {
			continue
		}
		u := &url.URL{Scheme: "https", Host: name, Path: "/"}

		list := make([]*http.Cookie, 0, len(cookies))
		for cookieName, value := range cookies {
			c := &http.Cookie{Name: cookieName, Value: value, Path: "/"}
			if strings.HasPrefix(host, ".") {
				c.Domain = name
			}
			list = append(list, c)
		}
		jar.SetCookies(u, list)
	}
	return jar, nil
}
