// Package advisor talks to an OpenAI-compatible chat completion endpoint
// to turn indicator snapshots into structured trading plans.
package advisor

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const (
	defaultBaseURL = "https://api.openai.com/v1"
	defaultModel   = "gpt-3.5-turbo"
)

// Message is a single chat turn.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Advisor is a thin chat-completions client. A zero API key disables it.
type Advisor struct {
	APIKey  string
	BaseURL string
	Model   string
	Client  *http.Client
}

// New builds an advisor. Empty baseURL and model fall back to the
// OpenAI defaults.
func New(apiKey, baseURL, model string) *Advisor {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	if model == "" {
		model = defaultModel
	}
	return &Advisor{
		APIKey:  apiKey,
		BaseURL: strings.TrimRight(baseURL, "/"),
		Model:   model,
		Client:  &http.Client{Timeout: 120 * time.Second},
	}
}

// Enabled reports whether an API key is configured.
func (a *Advisor) Enabled() bool { return a.APIKey != "" }

type chatRequest struct {
	Model       string    `json:"model"`
	Messages    []Message `json:"messages"`
	Temperature float64   `json:"temperature"`
	MaxTokens   int       `json:"max_tokens,omitempty"`
	Stream      bool      `json:"stream,omitempty"`
}

type chatResponse struct {
	Choices []struct {
		Message Message `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

type streamChunk struct {
	Choices []struct {
		Delta struct {
			Content string `json:"content"`
		} `json:"delta"`
	} `json:"choices"`
}

// Analyze sends one indicator snapshot and returns the full trading plan.
func (a *Advisor) Analyze(ctx context.Context, marketContext, principles string) (string, error) {
	if !a.Enabled() {
		return "", fmt.Errorf("advisor disabled: no API key configured")
	}
	req := chatRequest{
		Model: a.Model,
		Messages: []Message{
			{Role: "system", Content: analysisSystemPrompt(principles)},
			{Role: "user", Content: "请分析以下股票数据，并制定具体的交易计划:\n" + marketContext},
		},
		Temperature: 0.5,
		MaxTokens:   800,
	}
	resp, err := a.post(ctx, req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("advisor API error: status %d, body: %s", resp.StatusCode, string(body))
	}
	var out chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}
	if out.Error != nil {
		return "", fmt.Errorf("advisor API error: %s", out.Error.Message)
	}
	if len(out.Choices) == 0 {
		return "", fmt.Errorf("advisor returned no choices")
	}
	return out.Choices[0].Message.Content, nil
}

// Chat streams a multi-turn conversation. Each delta chunk is handed to
// onChunk as it arrives. Cancelling ctx stops the stream.
func (a *Advisor) Chat(ctx context.Context, messages []Message, contextData, principles string, onChunk func(string)) error {
	if !a.Enabled() {
		return fmt.Errorf("advisor disabled: no API key configured")
	}
	full := append([]Message{{Role: "system", Content: chatSystemPrompt(contextData, principles)}}, messages...)
	req := chatRequest{
		Model:       a.Model,
		Messages:    full,
		Temperature: 0.7,
		Stream:      true,
	}
	resp, err := a.post(ctx, req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("advisor API error: status %d, body: %s", resp.StatusCode, string(body))
	}

	scanner := bufio.NewScanner(resp.Body)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		line := strings.TrimSpace(scanner.Text())
		if !strings.HasPrefix(line, "data:") {
			continue
		}
		payload := strings.TrimSpace(strings.TrimPrefix(line, "data:"))
		if payload == "[DONE]" {
			return nil
		}
		var chunk streamChunk
		if err := json.Unmarshal([]byte(payload), &chunk); err != nil {
			continue
		}
		if len(chunk.Choices) > 0 && chunk.Choices[0].Delta.Content != "" {
			onChunk(chunk.Choices[0].Delta.Content)
		}
	}
	return scanner.Err()
}

func (a *Advisor) post(ctx context.Context, body chatRequest) (*http.Response, error) {
	raw, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.BaseURL+"/chat/completions", bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+a.APIKey)
	resp, err := a.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("advisor request: %w", err)
	}
	return resp, nil
}

func analysisSystemPrompt(principles string) string {
	var b strings.Builder
	b.WriteString(`你是一位经验丰富的量化交易员和投资顾问。你的目标是帮助用户制定严格、理性的交易计划。

请你根据用户提供的技术指标，输出一份结构化的交易计划。
必须包含明确的数字（价格）和逻辑（理由）。拒绝模棱两可的建议。
`)
	if principles != "" {
		b.WriteString("\n【特别注意】必须遵循以下用户的核心投资原则：\n")
		b.WriteString(principles)
		b.WriteString("\n如果市场情况违反这些原则，请明确指出并建议放弃交易。\n")
	}
	b.WriteString(`
输出格式要求如下：

### 市场状态分析
(简述当前趋势、强弱状态，以及支撑/阻力位的有效性)

### 交易计划
| 动作 | 建议价格/区间 | 逻辑理由 |
| :--- | :--- | :--- |
| 买入 | $XXX.XX | (例如：回踩支撑位企稳 / 突破阻力位) |
| 止损 | $XXX.XX | (例如：跌破 ATR 支撑 / 关键均线失效) |
| 止盈 | $XXX.XX | (例如：触及上方阻力位 / RSI 超买区域) |

### 时机与策略
(描述最佳的入场时机，并给出仓位管理建议)
`)
	return b.String()
}

func chatSystemPrompt(contextData, principles string) string {
	return fmt.Sprintf(`你是一位专业的投资交易助手。
当前市场上下文数据如下：
%s

用户的核心投资思想与原则：
%s

任务：
1. 请结合最新行情数据进行综合分析。
2. 回答要简洁、客观。
3. 如果用户问及具体点位，请参考上下文中的支撑/阻力位。
4. 必须遵守用户的投资原则。
`, contextData, principles)
}
