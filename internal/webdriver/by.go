package webdriver

import (
	"fmt"
	"strings"
)

// By is a W3C locator strategy and its value
type By struct {
	Using string `json:"using"`
	Value string `json:"value"`
}

// ByCSS locates by CSS selector
func ByCSS(selector string) By {
	return By{Using: "css selector", Value: selector}
}

// ByID locates by element id, expressed as a CSS attribute selector
func ByID(id string) By {
	return ByCSS(fmt.Sprintf(`[id="%s"]`, escapeQuotes(id)))
}

// ByName locates by the name attribute
func ByName(name string) By {
	return ByCSS(fmt.Sprintf(`[name="%s"]`, escapeQuotes(name)))
}

// ByTagName locates by tag name
func ByTagName(tag string) By {
	return By{Using: "tag name", Value: tag}
}

// ByLinkText locates anchors by their exact visible text
func ByLinkText(text string) By {
	return By{Using: "link text", Value: text}
}

// ByXPath locates by XPath expression
func ByXPath(expr string) By {
	return By{Using: "xpath", Value: expr}
}

func (b By) String() string {
	return b.Using + "=" + b.Value
}

func escapeQuotes(s string) string {
	return strings.ReplaceAll(s, `"`, `\"`)
}
