// ShowNotesSanitizerService はエピソードのショーノートHTMLをサニタイズし、
// XSS攻撃などのセキュリティリスクからユーザーを保護する。
// bluemondayライブラリを使用した許可リストベースのポリシーで、
// 安全なタグと属性のみを通過させる。
package security

import (
	"net/url"

	"github.com/microcosm-cc/bluemonday"
)

// ShowNotesSanitizerService はショーノートHTMLのサニタイズ機能の
// インターフェースを定義する。RSS由来のエピソード説明をAPI応答に
// 含める前に必ず通す。
type ShowNotesSanitizerService interface {
	// Sanitize はHTMLをサニタイズして安全なHTMLを返す。
	// 許可タグ（p, br, a, ul, ol, li, blockquote, pre, code, strong, em, img）のみを通過させ、
	// script, iframe, styleタグおよびon*イベント属性を除去する。
	// imgタグのsrc属性はhttpsスキームのみ許可される。
	// aタグにはtarget="_blank"とrel="noopener noreferrer"が自動付与される。
	// 空文字列の入力には空文字列を返す。
	// 同一入力に対して常に同一出力を返す（冪等）。
	Sanitize(rawHTML string) string
}

// showNotesSanitizer はShowNotesSanitizerServiceの実装。
// bluemondayのポリシーを保持し、スレッドセーフにサニタイズ処理を行う。
type showNotesSanitizer struct {
	policy *bluemonday.Policy
}

// NewShowNotesSanitizer はShowNotesSanitizerServiceの新しいインスタンスを生成する。
// 初期化時にbluemondayのカスタムポリシーを構築する。
func NewShowNotesSanitizer() *showNotesSanitizer {
	p := bluemonday.NewPolicy()

	// 許可タグ（属性なしのシンプルなタグ）。
	// script, iframe, style等は許可リストに含めないことで自動的に除去される。
	// on*イベント属性はbluemondayのデフォルトで許可されない。
	p.AllowElements(
		"p", "br", "ul", "ol", "li",
		"blockquote", "pre", "code",
		"strong", "em",
	)

	// aタグ: href属性のみ許可。相対URLは不許可。
	// target="_blank"とrel="noreferrer noopener"を強制付与する。
	p.AllowAttrs("href").OnElements("a")
	p.AllowRelativeURLs(false)
	p.AddTargetBlankToFullyQualifiedLinks(true)
	p.RequireNoReferrerOnLinks(true)

	// imgタグ: src属性はhttpsスキームのみ許可。altは許可。
	p.AllowAttrs("src").OnElements("img")
	p.AllowAttrs("alt").OnElements("img")
	p.AllowURLSchemeWithCustomPolicy("https", func(u *url.URL) bool {
		return true
	})

	return &showNotesSanitizer{
		policy: p,
	}
}

// Sanitize はショーノートHTMLをサニタイズして安全なHTMLを返す。
func (s *showNotesSanitizer) Sanitize(rawHTML string) string {
	return s.policy.Sanitize(rawHTML)
}
