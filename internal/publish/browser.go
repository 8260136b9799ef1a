package publish

import (
	"fmt"
	"sync"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/stealth"

	"outreach/pkg/logging"
)

type SessionConfig struct {
	// Headless is off by default: platform login flows throw extra
	// challenges at headless browsers.
	Headless bool

	// UserDataDir persists cookies between runs so a login survives the
	// process. Empty means a throwaway profile.
	UserDataDir string

	Logger logging.Logger
}

// Session owns one Chromium instance shared by the browser-driven
// publishers. The browser is launched lazily on first page request.
type Session struct {
	cfg SessionConfig

	mu      sync.Mutex
	browser *rod.Browser
}

func NewSession(cfg SessionConfig) *Session {
	return &Session{cfg: cfg}
}

func (s *Session) connect() (*rod.Browser, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.browser != nil {
		return s.browser, nil
	}

	l := launcher.New().
		Headless(s.cfg.Headless).
		Set("disable-gpu").
		Set("no-sandbox").
		Set("disable-dev-shm-usage").
		Set("disable-blink-features", "AutomationControlled")
	if s.cfg.UserDataDir != "" {
		l = l.UserDataDir(s.cfg.UserDataDir)
	}
	u, err := l.Launch()
	if err != nil {
		return nil, fmt.Errorf("launch browser: %w", err)
	}

	browser := rod.New().ControlURL(u)
	if err := browser.Connect(); err != nil {
		return nil, fmt.Errorf("connect to browser: %w", err)
	}

	s.cfg.Logger.WithField("headless", s.cfg.Headless).Info("Browser session started")
	s.browser = browser
	return browser, nil
}

// Page opens a new stealth tab. Callers close the page when done.
func (s *Session) Page() (*rod.Page, error) {
	browser, err := s.connect()
	if err != nil {
		return nil, err
	}
	page, err := stealth.Page(browser)
	if err != nil {
		return nil, fmt.Errorf("create tab: %w", err)
	}
	return page, nil
}

// Close shuts the browser down. Safe to call without a prior launch.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.browser != nil {
		_ = s.browser.Close()
		s.browser = nil
	}
}
