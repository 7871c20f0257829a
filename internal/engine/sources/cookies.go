package sources

import (
	"bufio"
	"fmt"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"
)

// WriteCookieFile stores a Netscape-format cookie blob in a private temp file
// and returns its path with a cleanup func that removes it.
func WriteCookieFile(content string) (string, func(), error) {
	f, err := os.CreateTemp("", "yt-cookies-*.txt")
	if err != nil {
		return "", nil, fmt.Errorf("create cookie file: %w", err)
	}
	path := f.Name()
	cleanup := func() { _ = os.Remove(path) }

	if err := f.Chmod(0o600); err != nil {
		f.Close()
		cleanup()
		return "", nil, fmt.Errorf("chmod cookie file: %w", err)
	}
	if _, err := f.WriteString(content); err != nil {
		f.Close()
		cleanup()
		return "", nil, fmt.Errorf("write cookie file: %w", err)
	}
	if err := f.Close(); err != nil {
		cleanup()
		return "", nil, fmt.Errorf("close cookie file: %w", err)
	}
	return path, cleanup, nil
}

// LoadCookieJar parses a Netscape cookie file into a jar. Expired and
// malformed lines are skipped.
func LoadCookieJar(path string) (http.CookieJar, int, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, 0, fmt.Errorf("open cookie file: %w", err)
	}
	defer f.Close()

	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, 0, err
	}

	byHost := make(map[string][]*http.Cookie)
	now := time.Now()
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		c, host, ok := parseNetscapeLine(sc.Text())
		if !ok || (!c.Expires.IsZero() && c.Expires.Before(now)) {
			continue
		}
		byHost[host] = append(byHost[host], c)
	}
	if err := sc.Err(); err != nil {
		return nil, 0, fmt.Errorf("read cookie file: %w", err)
	}

	n := 0
	for host, cookies := range byHost {
		jar.SetCookies(&url.URL{Scheme: "https", Host: host, Path: "/"}, cookies)
		n += len(cookies)
	}
	return jar, n, nil
}

// parseNetscapeLine parses "domain flag path secure expiry name value".
// The #HttpOnly_ prefix marks an HttpOnly cookie rather than a comment.
func parseNetscapeLine(line string) (*http.Cookie, string, bool) {
	line = strings.TrimRight(line, "\r\n")
	httpOnly := false
	if rest, ok := strings.CutPrefix(line, "#HttpOnly_"); ok {
		line, httpOnly = rest, true
	}
	if line == "" || strings.HasPrefix(line, "#") {
		return nil, "", false
	}
	fields := strings.Split(line, "\t")
	if len(fields) != 7 {
		return nil, "", false
	}
	domain := fields[0]
	c := &http.Cookie{
		Name:     fields[5],
		Value:    fields[6],
		Path:     fields[2],
		Domain:   domain,
		Secure:   strings.EqualFold(fields[3], "TRUE"),
		HttpOnly: httpOnly,
	}
	if exp, err := strconv.ParseInt(fields[4], 10, 64); err == nil && exp > 0 {
		c.Expires = time.Unix(exp, 0)
	}
	return c, strings.TrimPrefix(domain, "."), true
}
