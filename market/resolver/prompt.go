package resolver

import (
	"fmt"
	"strings"

	"github.com/maeulmarket/server/model"
)

// buildRequest renders the bounded prompt context: mode, item facts,
// personality brief, current price, and the full prior transcript.
func buildRequest(in Input) Request {
	roleLine := "판매자 (유저가 구매 시도 중)"
	if in.Mode == model.TradeSell {
		roleLine = "구매자 (유저가 판매 시도 중)"
	}
	cleanState := "보통"
	if in.IsCleaned {
		cleanState = "세척됨"
	}
	freshState := "싱싱함"
	if in.Spoiled {
		freshState = "부패함/썩음"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "당신의 역할: 동네 중고 거래 장터의 실제 이용자 NPC\n")
	fmt.Fprintf(&b, "현재 당신의 상태:\n")
	fmt.Fprintf(&b, "- 거래 모드: %s\n", roleLine)
	fmt.Fprintf(&b, "- 대상 물건: %s (기본 시세: %d원)\n", in.ItemName, in.BasePrice)
	fmt.Fprintf(&b, "- 물건 상태: %s, %s\n", cleanState, freshState)
	fmt.Fprintf(&b, "- 당신의 성격: %s (%s)\n", in.Personality.Label(), in.Personality.Description())
	fmt.Fprintf(&b, "- 현재 합의된 가격: %d원\n\n", in.CurrentPrice)
	b.WriteString("대화 규칙:\n")
	b.WriteString("1. 성격에 맞춰 현실적인 한국어 구어체로 대화하고 명확한 가격을 제시하세요.\n")
	b.WriteString("2. 적어도 세 문장 넘게 길게 써서 실제 사람과 말하는 것처럼 느껴지게 하세요.\n")
	fmt.Fprintf(&b, "3. 응답은 반드시 JSON 형식으로만 하세요: {\"text\": \"대화내용\", \"newPrice\": \"숫자\"}\n")
	b.WriteString("4. 합의한 마지막 값을 'newPrice' 칸에 숫자로만 적으세요.\n")

	messages := make([]ChatMessage, 0, len(in.Transcript)+1)
	for _, m := range in.Transcript {
		role := "assistant"
		if m.FromUser {
			role = "user"
		}
		messages = append(messages, ChatMessage{Role: role, Content: m.Text})
	}
	messages = append(messages, ChatMessage{Role: "user", Content: in.UserMessage})

	return Request{System: b.String(), Messages: messages}
}
