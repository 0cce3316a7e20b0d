package web

import (
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/playwright-community/playwright-go"
)

// Browser smoke tests drive a real Chromium through Playwright. They are
// opt-in because they need installed browsers:
//
//	go run github.com/playwright-community/playwright-go/cmd/playwright install chromium
//	GYMBIOS_BROWSER_TESTS=1 go test ./internal/adapters/http -run Browser
func newBrowserPage(t *testing.T) (playwright.Page, string) {
	t.Helper()
	if os.Getenv("GYMBIOS_BROWSER_TESTS") != "1" {
		t.Skip("set GYMBIOS_BROWSER_TESTS=1 to run browser tests")
	}
	srv := httptest.NewServer(newTestServer(t))
	t.Cleanup(srv.Close)

	pw, err := playwright.Run()
	if err != nil {
		t.Fatalf("failed to start Playwright: %v", err)
	}
	browser, err := pw.Chromium.Launch(playwright.BrowserTypeLaunchOptions{
		Headless: playwright.Bool(true),
	})
	if err != nil {
		t.Fatalf("failed to launch browser: %v", err)
	}
	page, err := browser.NewPage()
	if err != nil {
		t.Fatalf("failed to create page: %v", err)
	}
	t.Cleanup(func() {
		page.Close()
		browser.Close()
		pw.Stop()
	})
	return page, srv.URL
}

func browserLogin(t *testing.T, page playwright.Page, baseURL, emailAddr, password string) {
	t.Helper()
	if _, err := page.Goto(baseURL + "/login"); err != nil {
		t.Fatalf("failed to navigate to login: %v", err)
	}
	if err := page.Locator("input[name=email]").Fill(emailAddr); err != nil {
		t.Fatalf("failed to fill email: %v", err)
	}
	if err := page.Locator("input[name=password]").Fill(password); err != nil {
		t.Fatalf("failed to fill password: %v", err)
	}
	if err := page.Locator("button[type=submit]").Click(); err != nil {
		t.Fatalf("failed to click login: %v", err)
	}
}

func TestBrowser_LoginShowsDashboardAndSidebar(t *testing.T) {
	page, baseURL := newBrowserPage(t)
	browserLogin(t, page, baseURL, "admin@gym.test", testPassword)

	if err := page.WaitForURL(baseURL+"/dashboard", playwright.PageWaitForURLOptions{
		Timeout: playwright.Float(10000),
	}); err != nil {
		t.Fatalf("login did not redirect to dashboard: %v", err)
	}
	sidebar, err := page.Locator("nav.sidebar").TextContent()
	if err != nil {
		t.Fatalf("sidebar not rendered: %v", err)
	}
	for _, want := range []string{"Members", "Purchase orders", "Salary"} {
		if !strings.Contains(sidebar, want) {
			t.Errorf("sidebar missing %q", want)
		}
	}
}

func TestBrowser_WrongPasswordStaysOnLogin(t *testing.T) {
	page, baseURL := newBrowserPage(t)
	browserLogin(t, page, baseURL, "admin@gym.test", "not-the-password")

	alert := page.Locator("p.error")
	if err := alert.WaitFor(playwright.LocatorWaitForOptions{
		State:   playwright.WaitForSelectorStateVisible,
		Timeout: playwright.Float(5000),
	}); err != nil {
		t.Fatalf("no error shown after a bad password: %v", err)
	}
	if !strings.HasSuffix(page.URL(), "/login") {
		t.Errorf("url = %s, want the login page", page.URL())
	}
}

func TestBrowser_StaffCannotSeeSalary(t *testing.T) {
	page, baseURL := newBrowserPage(t)
	browserLogin(t, page, baseURL, "desk@gym.test", testPassword)

	if err := page.WaitForURL(baseURL+"/dashboard", playwright.PageWaitForURLOptions{
		Timeout: playwright.Float(10000),
	}); err != nil {
		t.Fatalf("login did not redirect to dashboard: %v", err)
	}
	count, err := page.Locator("nav.sidebar a[href='/salary']").Count()
	if err != nil {
		t.Fatal(err)
	}
	if count != 0 {
		t.Error("staff sidebar links to salary")
	}
}
