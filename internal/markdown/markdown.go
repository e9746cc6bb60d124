package markdown

import (
	"github.com/russross/blackfriday"
)

const htmlFlags = blackfriday.HTML_USE_XHTML |
	blackfriday.HTML_SKIP_HTML |
	blackfriday.HTML_SKIP_STYLE |
	blackfriday.HTML_SKIP_IMAGES |
	blackfriday.HTML_SAFELINK |
	blackfriday.HTML_HREF_TARGET_BLANK |
	blackfriday.HTML_NOFOLLOW_LINKS

const extensions = blackfriday.EXTENSION_NO_INTRA_EMPHASIS |
	blackfriday.EXTENSION_TABLES |
	blackfriday.EXTENSION_FENCED_CODE |
	blackfriday.EXTENSION_AUTOLINK |
	blackfriday.EXTENSION_STRIKETHROUGH |
	blackfriday.EXTENSION_SPACE_HEADERS

// ToHTML renders model output for the browser. Raw HTML embedded in the
// text is dropped and only safe link schemes are kept.
func ToHTML(text string) string {
	renderer := blackfriday.HtmlRenderer(htmlFlags, "", "")
	return string(blackfriday.Markdown([]byte(text), renderer, extensions))
}
