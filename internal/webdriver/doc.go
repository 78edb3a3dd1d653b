// Package webdriver is a small client for the W3C WebDriver wire protocol as
// served by a Selenium Grid router.
//
// It covers what the browser suite needs:
//   - Session creation and teardown, with optional grid basic auth
//   - Navigation, element lookup and interaction
//   - Script execution and frame switching
//   - Grid managed downloads and Firefox add-on installation
//   - Explicit waits that poll a condition until it holds
package webdriver
