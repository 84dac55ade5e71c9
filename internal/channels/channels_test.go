package channels

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/kilimobot/kilimobot/internal/agents"
	"github.com/kilimobot/kilimobot/internal/config"
	"github.com/kilimobot/kilimobot/internal/llm"
	"github.com/kilimobot/kilimobot/internal/store"
)

// scriptedOrchestrator records what it was called with and replies with a
// fixed text.
type scriptedOrchestrator struct {
	reply       string
	lastQuery   string
	lastContext agents.UserContext
	lastHistory []llm.Message
	lastLang    config.Language
	calls       int
}

func (s *scriptedOrchestrator) ProcessQuery(ctx context.Context, text string, uc agents.UserContext, history []llm.Message, lang config.Language) string {
	s.calls++
	s.lastQuery = text
	s.lastContext = uc
	s.lastHistory = history
	s.lastLang = lang
	return s.reply
}

func setupProcessor(t *testing.T) (*Processor, *scriptedOrchestrator, *store.Store) {
	t.Helper()
	st, err := store.OpenMemory()
	if err != nil {
		t.Fatalf("OpenMemory() error: %v", err)
	}
	t.Cleanup(func() { st.Close() })

	orch := &scriptedOrchestrator{reply: "plant in March"}
	return NewProcessor(st, orch, 6, config.LanguageEnglish), orch, st
}

func TestProcessInboundPersistsBothTurns(t *testing.T) {
	p, orch, st := setupProcessor(t)
	ctx := context.Background()

	reply := p.ProcessInbound(ctx, InboundMessage{
		Channel:  ChannelWhatsApp,
		Identity: "+254700000010",
		Content:  "when should I plant maize in nakuru?",
	})
	if reply != "plant in March" {
		t.Errorf("reply = %q", reply)
	}
	if orch.calls != 1 {
		t.Fatalf("orchestrator calls = %d, want 1", orch.calls)
	}

	msgs, err := st.LastMessages(ctx, "+254700000010", 10)
	if err != nil {
		t.Fatalf("LastMessages() error: %v", err)
	}
	if len(msgs) != 2 {
		t.Fatalf("persisted messages = %d, want inbound + outbound", len(msgs))
	}
	if msgs[0].Direction != store.DirectionInbound || msgs[1].Direction != store.DirectionOutbound {
		t.Errorf("directions = %s, %s", msgs[0].Direction, msgs[1].Direction)
	}
	if msgs[1].Content != "plant in March" {
		t.Errorf("outbound content = %q", msgs[1].Content)
	}
}

func TestProcessInboundDerivesContext(t *testing.T) {
	p, orch, _ := setupProcessor(t)

	p.ProcessInbound(context.Background(), InboundMessage{
		Channel:  ChannelSMS,
		Identity: "+254700000011",
		Content:  "when should I plant maize in nakuru?",
	})

	if orch.lastContext.Crop != "maize" {
		t.Errorf("crop = %q, want maize", orch.lastContext.Crop)
	}
	if orch.lastContext.Region != "nakuru" {
		t.Errorf("region = %q, want nakuru", orch.lastContext.Region)
	}
	if orch.lastContext.Identity != "+254700000011" {
		t.Errorf("identity = %q", orch.lastContext.Identity)
	}
}

func TestProcessInboundUpdatesProfile(t *testing.T) {
	p, _, st := setupProcessor(t)
	ctx := context.Background()

	p.ProcessInbound(ctx, InboundMessage{
		Channel:  ChannelWhatsApp,
		Identity: "+254700000012",
		Content:  "my maize in nakuru has problems",
	})

	u, err := st.GetUser(ctx, "+254700000012")
	if err != nil {
		t.Fatalf("GetUser() error: %v", err)
	}
	if u.County != "nakuru" {
		t.Errorf("county = %q, want nakuru", u.County)
	}
	if len(u.Crops) != 1 || u.Crops[0] != "maize" {
		t.Errorf("crops = %v, want [maize]", u.Crops)
	}
}

func TestProcessInboundExcludesOwnMessageFromHistory(t *testing.T) {
	p, orch, _ := setupProcessor(t)
	ctx := context.Background()
	id := "+254700000013"

	p.ProcessInbound(ctx, InboundMessage{Channel: ChannelWeb, Identity: id, Content: "first question about maize"})
	p.ProcessInbound(ctx, InboundMessage{Channel: ChannelWeb, Identity: id, Content: "second question"})

	// History for the second turn is the first exchange only, never the
	// second question itself.
	if len(orch.lastHistory) != 2 {
		t.Fatalf("history length = %d, want 2", len(orch.lastHistory))
	}
	if orch.lastHistory[0].Content != "first question about maize" {
		t.Errorf("history[0] = %q", orch.lastHistory[0].Content)
	}
	if orch.lastHistory[0].Role != llm.RoleUser || orch.lastHistory[1].Role != llm.RoleAssistant {
		t.Errorf("roles = %s, %s", orch.lastHistory[0].Role, orch.lastHistory[1].Role)
	}
	for _, m := range orch.lastHistory {
		if m.Content == "second question" {
			t.Error("current message leaked into its own history")
		}
	}
}

func TestProcessInboundHistoryCapped(t *testing.T) {
	p, orch, _ := setupProcessor(t)
	ctx := context.Background()
	id := "+254700000014"

	for i := 0; i < 8; i++ {
		p.ProcessInbound(ctx, InboundMessage{Channel: ChannelWeb, Identity: id, Content: "question"})
	}

	if len(orch.lastHistory) > 6 {
		t.Errorf("history length = %d, want at most 6", len(orch.lastHistory))
	}
}

func TestDeriveUserContextFallsBackToProfile(t *testing.T) {
	soil := "clay"
	u := &store.User{
		Identity: "+254700000015",
		County:   "meru",
		Crops:    []string{"beans"},
		SoilType: soil,
	}

	uc := DeriveUserContext("how do I improve my yields?", u)
	if uc.Crop != "beans" || uc.Region != "meru" || uc.SoilType != "clay" {
		t.Errorf("context = %+v, want profile fallback", uc)
	}

	// An inline mention overrides the stored profile.
	uc = DeriveUserContext("how do I grow maize in kiambu?", u)
	if uc.Crop != "maize" || uc.Region != "kiambu" {
		t.Errorf("context = %+v, want inline override", uc)
	}
}

func TestDeriveUserContextAnonymous(t *testing.T) {
	uc := DeriveUserContext("planting maize in nakuru", nil)
	if uc.Crop != "maize" || uc.Region != "nakuru" || uc.FarmStage != "planting" {
		t.Errorf("context = %+v", uc)
	}
}

func TestUSSDMenuFlow(t *testing.T) {
	p, _, _ := setupProcessor(t)
	h := NewUSSDHandler(p)

	screen := func(input string) string {
		form := url.Values{}
		form.Set("sessionId", "s1")
		form.Set("phoneNumber", "+254700000016")
		form.Set("text", input)
		req := httptest.NewRequest(http.MethodPost, "/webhook/ussd", strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		w := httptest.NewRecorder()
		h.HandleSession(w, req)
		return w.Body.String()
	}

	if got := screen(""); !strings.HasPrefix(got, "CON Welcome to Kilimobot") {
		t.Errorf("initial screen = %q", got)
	}
	if got := screen("1"); !strings.HasPrefix(got, "CON Type your") {
		t.Errorf("question prompt = %q", got)
	}
	if got := screen("1*how to plant maize"); !strings.HasPrefix(got, "END ") {
		t.Errorf("answer screen = %q", got)
	}
	if got := screen("9"); !strings.HasPrefix(got, "CON Invalid choice") {
		t.Errorf("invalid screen = %q", got)
	}
}

func TestUSSDScreenTruncated(t *testing.T) {
	long := strings.Repeat("advice ", 100)
	if got := truncateScreen("END " + long); len(got) > maxUSSDLength {
		t.Errorf("screen length = %d, want <= %d", len(got), maxUSSDLength)
	}
}

func TestUSSDScreenTruncationKeepsRunesWhole(t *testing.T) {
	long := "END " + strings.Repeat("péste ", 60)
	got := truncateScreen(long)
	if len(got) > maxUSSDLength {
		t.Errorf("screen length = %d, want <= %d", len(got), maxUSSDLength)
	}
	if !utf8.ValidString(got) {
		t.Errorf("truncated screen is not valid UTF-8: %q", got)
	}
}

func TestFarmStageResolutionIsStable(t *testing.T) {
	// Text naming two stages must resolve the same way on every call.
	const text = "drying my harvest now"
	want := matchFarmStage(text)
	if want == "" {
		t.Fatal("expected a farm stage match")
	}
	for i := 0; i < 100; i++ {
		if got := matchFarmStage(text); got != want {
			t.Fatalf("unstable farm stage: got %q after %q", got, want)
		}
	}
	if up := ExtractProfileSignals(text); up.FarmStage != want {
		t.Errorf("ExtractProfileSignals.FarmStage = %q, want %q", up.FarmStage, want)
	}
}

func TestSMSSendTruncatesToBudget(t *testing.T) {
	var sent string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = r.ParseForm()
		sent = r.PostFormValue("message")
	}))
	defer srv.Close()

	p, _, _ := setupProcessor(t)
	h := NewSMSHandler(p, config.ChannelConfig{SMSAPIKey: "key"})
	h.baseURL = srv.URL

	long := strings.Repeat("mazao yétu ", 60)
	if err := h.SendMessage(context.Background(), "+254700000000", long); err != nil {
		t.Fatalf("SendMessage: %v", err)
	}
	if len(sent) > maxSMSLength {
		t.Errorf("sent length = %d, want <= %d", len(sent), maxSMSLength)
	}
	if !utf8.ValidString(sent) {
		t.Errorf("sent message is not valid UTF-8: %q", sent)
	}
	if !strings.HasSuffix(sent, "...") {
		t.Errorf("truncated message should carry an ellipsis, got %q", sent[len(sent)-10:])
	}
}

func TestSMSWebhookAlwaysAcknowledges(t *testing.T) {
	p, _, _ := setupProcessor(t)
	h := NewSMSHandler(p, config.ChannelConfig{}) // no credentials

	form := url.Values{}
	form.Set("from", "+254700000017")
	form.Set("text", "habari, maize prices?")
	req := httptest.NewRequest(http.MethodPost, "/webhook/sms", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := httptest.NewRecorder()

	h.HandleInbound(w, req)
	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want 200 even when the reply send fails", w.Code)
	}
}

func TestSMSSendWithoutCredentials(t *testing.T) {
	p, _, _ := setupProcessor(t)
	h := NewSMSHandler(p, config.ChannelConfig{})

	if err := h.SendMessage(context.Background(), "+254700000018", "hello"); err == nil {
		t.Error("SendMessage without credentials should fail gracefully with an error")
	}
}

func TestWhatsAppVerifyHandshake(t *testing.T) {
	p, _, _ := setupProcessor(t)
	h := NewWhatsAppHandler(p, config.ChannelConfig{WhatsAppToken: "secret", WhatsAppPhoneID: "123"})

	req := httptest.NewRequest(http.MethodGet,
		"/webhook/whatsapp?hub.mode=subscribe&hub.verify_token=secret&hub.challenge=42", nil)
	w := httptest.NewRecorder()
	h.HandleVerify(w, req)

	if w.Code != http.StatusOK || w.Body.String() != "42" {
		t.Errorf("verify = %d %q, want 200 with echoed challenge", w.Code, w.Body.String())
	}

	req = httptest.NewRequest(http.MethodGet,
		"/webhook/whatsapp?hub.mode=subscribe&hub.verify_token=wrong&hub.challenge=42", nil)
	w = httptest.NewRecorder()
	h.HandleVerify(w, req)
	if w.Code != http.StatusForbidden {
		t.Errorf("bad token status = %d, want 403", w.Code)
	}
}

func TestWhatsAppWebhookToleratesGarbage(t *testing.T) {
	p, _, _ := setupProcessor(t)
	h := NewWhatsAppHandler(p, config.ChannelConfig{})

	req := httptest.NewRequest(http.MethodPost, "/webhook/whatsapp", strings.NewReader("not json"))
	w := httptest.NewRecorder()
	h.HandleWebhook(w, req)
	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want 200 so the provider never retries", w.Code)
	}
}

func TestVoiceTurn(t *testing.T) {
	p, orch, _ := setupProcessor(t)
	h := NewVoiceHandler(p, true)

	body := `{"identity":"+254700000019","transcript":"how do I feed dairy cows"}`
	req := httptest.NewRequest(http.MethodPost, "/webhook/voice", strings.NewReader(body))
	w := httptest.NewRecorder()
	h.HandleTurn(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "plant in March") {
		t.Errorf("body = %q, want orchestrator reply", w.Body.String())
	}
	if orch.lastQuery != "how do I feed dairy cows" {
		t.Errorf("query = %q", orch.lastQuery)
	}
}

func TestVoiceDisabled(t *testing.T) {
	p, orch, _ := setupProcessor(t)
	h := NewVoiceHandler(p, false)

	req := httptest.NewRequest(http.MethodPost, "/webhook/voice", strings.NewReader(`{"identity":"x","transcript":"hi"}`))
	w := httptest.NewRecorder()
	h.HandleTurn(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", w.Code)
	}
	if orch.calls != 0 {
		t.Error("disabled voice channel should not reach the orchestrator")
	}
}
