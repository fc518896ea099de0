package approuter

import (
	"fmt"
	"strings"
)

// MountElement is the element client-side rendering attaches to. Both the
// production entry document and every server-rendered page carry it.
const MountElement = `<div id="app"></div>`

// DefaultTemplate is the fallback HTML document used when no template is
// configured. It honors the template contract: a full document with the
// mount element and a module script for the client entry bundle.
const DefaultTemplate = `<!DOCTYPE html>
<html lang="en">
  <head>
    <meta charset="UTF-8" />
    <meta name="viewport" content="width=device-width, initial-scale=1.0" />
    <title>webapp</title>
  </head>
  <body>
    ` + MountElement + `
    <script type="module" src="/assets/main.js"></script>
  </body>
</html>
`

// renderPage injects server-rendered markup into the template's mount
// element.
func renderPage(template, markup string) (string, error) {
	if !strings.Contains(template, MountElement) {
		return "", fmt.Errorf("template is missing the mount element %s", MountElement)
	}
	mounted := strings.TrimSuffix(MountElement, "</div>") + markup + "</div>"
	return strings.Replace(template, MountElement, mounted, 1), nil
}
