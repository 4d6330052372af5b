// Package report holds the placeholder AI collaborators: they
// template input data into fixed-form text and perform no inference.
package report

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/yuin/goldmark"
)

var md = goldmark.New()

// Answer templates a chat reply from the question and whatever rows
// were pulled as context. Placeholder until a real model is wired in.
func Answer(question string, contextData any) string {
	return fmt.Sprintf(`ご質問: 「%s」
取得データ: %s

AIによる回答: このデータに基づいて、ご質問にお答えします。
（例: 最近のアポ率は〇〇%%です。）`, question, indentJSON(contextData))
}

// Generate templates a campaign-effect report in markdown from the
// monthly summary and client detail payloads.
func Generate(summaryData, clientDetailsData any) string {
	return fmt.Sprintf(`## 施策効果レポート

### 月次サマリー
%s

### クライアント詳細
%s

上記データに基づき、AIが生成したレポートがここに表示されます。
例: 「〇〇クライアントのトーク改善施策により、アポ率がX%%からY%%に向上しました。」`,
		indentJSON(summaryData), indentJSON(clientDetailsData))
}

// RenderHTML converts report markdown to HTML for the UI's report
// modal. Returns the input unrendered on conversion failure.
func RenderHTML(markdown string) string {
	var buf bytes.Buffer
	if err := md.Convert([]byte(markdown), &buf); err != nil {
		return markdown
	}
	return buf.String()
}

func indentJSON(v any) string {
	if v == nil {
		return "null"
	}
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Sprintf("%v", v)
	}
	return string(data)
}
