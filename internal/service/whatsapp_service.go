package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"vendaflow/internal/dto"
	"vendaflow/internal/infra"
	"vendaflow/internal/model"
	"vendaflow/internal/repository"
)

// ReplySender queues an outbound WhatsApp message. Implemented by the worker
// dispatcher so webhook handling never blocks on the gateway.
type ReplySender interface {
	EnqueueText(ctx context.Context, phone, message string) error
}

// WhatsAppService processes inbound Z-API messages: it resolves the sender to
// a staff user, keeps a short-lived conversation context in Redis, asks the
// LLM for a structured action and executes it against the CRM.
type WhatsAppService interface {
	ProcessInbound(ctx context.Context, msg dto.WebhookMessage) error
	InstanceStatus(ctx context.Context) (*dto.InstanceStatusResponse, error)
	QRCode(ctx context.Context) (*dto.QRCodeResponse, error)
}

type whatsappService struct {
	userRepo repository.UserRepository
	leadRepo repository.LeadRepository
	leads    LeadService
	llm      *infra.LLMClient
	llmCB    *infra.CircuitBreaker
	zapi     *infra.ZAPIClient
	rdb      *redis.Client
	sender   ReplySender
}

func NewWhatsAppService(
	userRepo repository.UserRepository,
	leadRepo repository.LeadRepository,
	leads LeadService,
	llm *infra.LLMClient,
	llmCB *infra.CircuitBreaker,
	zapi *infra.ZAPIClient,
	rdb *redis.Client,
	sender ReplySender,
) WhatsAppService {
	return &whatsappService{
		userRepo: userRepo,
		leadRepo: leadRepo,
		leads:    leads,
		llm:      llm,
		llmCB:    llmCB,
		zapi:     zapi,
		rdb:      rdb,
		sender:   sender,
	}
}

const (
	conversationTTL    = 30 * time.Minute
	conversationWindow = 10 // messages kept as LLM context
)

// assistantAction is the fixed JSON schema the LLM must answer with.
type assistantAction struct {
	Action string `json:"action"` // create_lead | update_lead | search_lead | list_leads | ask_question | help
	Reply  string `json:"reply"`
	Query  string `json:"query,omitempty"`
	Lead   struct {
		Name   string `json:"name,omitempty"`
		Phone  string `json:"phone,omitempty"`
		City   string `json:"city,omitempty"`
		Region string `json:"region,omitempty"`
		Notes  string `json:"notes,omitempty"`
	} `json:"lead,omitempty"`
}

const assistantSystemPrompt = `Você é o assistente de vendas da empresa no WhatsApp.
Responda SEMPRE com um único objeto JSON, sem texto fora dele, no formato:
{"action": "<create_lead|update_lead|search_lead|list_leads|ask_question|help>",
 "reply": "<mensagem para o vendedor>",
 "query": "<termo de busca, quando aplicável>",
 "lead": {"name": "", "phone": "", "city": "", "region": "", "notes": ""}}
Use "ask_question" quando faltar informação e "help" quando não entender o pedido.`

func (s *whatsappService) ProcessInbound(ctx context.Context, msg dto.WebhookMessage) error {
	// Our own outbound messages echo back through the webhook.
	if msg.FromMe {
		return nil
	}
	text := strings.TrimSpace(msg.Text.Message)
	if text == "" {
		return nil
	}

	// Only staff talk to the assistant; match any Brazilian variant.
	user, err := s.userRepo.FindByPhoneVariants(ctx, PhoneVariants(msg.Phone))
	if err != nil {
		log.Debug().Str("phone", msg.Phone).Msg("whatsapp: message from unknown number ignored")
		return nil
	}
	if user.OrganizationID == nil {
		return nil
	}
	orgID := *user.OrganizationID

	history, err := s.loadConversation(ctx, user.ID)
	if err != nil {
		log.Warn().Err(err).Msg("whatsapp: failed to load conversation context")
	}

	messages := make([]infra.LLMMessage, 0, len(history)+2)
	messages = append(messages, infra.LLMMessage{Role: "system", Content: assistantSystemPrompt})
	messages = append(messages, history...)
	messages = append(messages, infra.LLMMessage{Role: "user", Content: text})

	var completion string
	err = s.llmCB.Execute(func() error {
		var cerr error
		completion, cerr = s.llm.Complete(ctx, messages)
		return cerr
	})
	if err != nil {
		log.Error().Err(err).Msg("whatsapp: llm unavailable")
		return s.reply(ctx, user.ID, msg.Phone, text,
			"Desculpe, o assistente está indisponível no momento. Tente novamente em alguns minutos.")
	}

	action, err := parseAssistantAction(completion)
	if err != nil {
		log.Warn().Err(err).Str("completion", completion).Msg("whatsapp: unparseable llm action")
		return s.reply(ctx, user.ID, msg.Phone, text,
			"Não consegui entender o pedido. Pode reformular?")
	}

	replyText := s.execute(ctx, orgID, user, action)
	return s.reply(ctx, user.ID, msg.Phone, text, replyText)
}

// execute runs the structured action and returns the message to send back.
func (s *whatsappService) execute(ctx context.Context, orgID uuid.UUID, user *model.User, action *assistantAction) string {
	switch action.Action {
	case "create_lead":
		return s.createLead(ctx, orgID, user, action)
	case "update_lead":
		return s.updateLead(ctx, orgID, action)
	case "search_lead", "list_leads":
		return s.searchLeads(ctx, orgID, user, action)
	case "ask_question", "help":
		if action.Reply != "" {
			return action.Reply
		}
		return "Posso cadastrar, atualizar e buscar leads. Como posso ajudar?"
	default:
		return "Não reconheci essa ação. Posso cadastrar, atualizar e buscar leads."
	}
}

func (s *whatsappService) createLead(ctx context.Context, orgID uuid.UUID, user *model.User, action *assistantAction) string {
	if action.Lead.Name == "" || action.Lead.Phone == "" {
		return "Para cadastrar um lead preciso de nome e telefone."
	}
	req := dto.CreateLeadRequest{
		Name:  action.Lead.Name,
		Phone: action.Lead.Phone,
	}
	if action.Lead.City != "" {
		req.City = &action.Lead.City
	}
	if action.Lead.Region != "" {
		req.Region = &action.Lead.Region
	}
	if action.Lead.Notes != "" {
		req.Notes = &action.Lead.Notes
	}
	sellerID := user.ID.String()
	req.SellerUserID = &sellerID
	source := "whatsapp"
	req.Source = &source

	lead, err := s.leads.Create(ctx, orgID, req)
	if err != nil {
		return "Não consegui cadastrar: " + err.Error()
	}
	if action.Reply != "" {
		return action.Reply
	}
	return fmt.Sprintf("Lead %s cadastrado com o telefone %s.", lead.Name, lead.Phone)
}

func (s *whatsappService) updateLead(ctx context.Context, orgID uuid.UUID, action *assistantAction) string {
	if action.Lead.Phone == "" {
		return "Para atualizar um lead preciso do telefone dele."
	}
	lead, err := s.leadRepo.FindByPhoneVariants(ctx, orgID, PhoneVariants(action.Lead.Phone))
	if err != nil {
		return "Não encontrei nenhum lead com esse telefone."
	}

	changed := false
	if action.Lead.Name != "" {
		lead.Name = action.Lead.Name
		changed = true
	}
	if action.Lead.City != "" {
		lead.City = &action.Lead.City
		changed = true
	}
	if action.Lead.Region != "" {
		lead.Region = &action.Lead.Region
		changed = true
	}
	if action.Lead.Notes != "" {
		lead.Notes = &action.Lead.Notes
		changed = true
	}
	if !changed {
		return "Nenhum dado novo para atualizar."
	}
	if err := s.leadRepo.Update(ctx, lead); err != nil {
		return "Não consegui atualizar o lead: " + err.Error()
	}
	if action.Reply != "" {
		return action.Reply
	}
	return fmt.Sprintf("Lead %s atualizado.", lead.Name)
}

func (s *whatsappService) searchLeads(ctx context.Context, orgID uuid.UUID, user *model.User, action *assistantAction) string {
	filter := repository.LeadFilter{Page: 1, Limit: 5, Search: action.Query}
	if action.Action == "list_leads" {
		filter.Search = ""
		filter.SellerUserID = user.ID.String()
	}
	leads, total, err := s.leadRepo.List(ctx, orgID, filter)
	if err != nil {
		return "Não consegui buscar os leads agora."
	}
	if len(leads) == 0 {
		return "Nenhum lead encontrado."
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Encontrei %d lead(s):\n", total)
	for _, l := range leads {
		fmt.Fprintf(&b, "• %s — %s", l.Name, l.Phone)
		if l.City != nil {
			fmt.Fprintf(&b, " (%s)", *l.City)
		}
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

// reply records both turns in the conversation window and queues the send.
func (s *whatsappService) reply(ctx context.Context, userID uuid.UUID, phone, inbound, outbound string) error {
	s.appendConversation(ctx, userID,
		infra.LLMMessage{Role: "user", Content: inbound},
		infra.LLMMessage{Role: "assistant", Content: outbound},
	)
	return s.sender.EnqueueText(ctx, phone, outbound)
}

// ── Conversation context ─────────────────────────────────────────────────────

func conversationKey(userID uuid.UUID) string {
	return "whatsapp:conv:" + userID.String()
}

func (s *whatsappService) loadConversation(ctx context.Context, userID uuid.UUID) ([]infra.LLMMessage, error) {
	if s.rdb == nil {
		return nil, nil
	}
	raw, err := s.rdb.LRange(ctx, conversationKey(userID), 0, conversationWindow-1).Result()
	if err != nil {
		return nil, err
	}

	// Stored newest-first; replay oldest-first.
	messages := make([]infra.LLMMessage, 0, len(raw))
	for i := len(raw) - 1; i >= 0; i-- {
		var m infra.LLMMessage
		if err := json.Unmarshal([]byte(raw[i]), &m); err == nil {
			messages = append(messages, m)
		}
	}
	return messages, nil
}

func (s *whatsappService) appendConversation(ctx context.Context, userID uuid.UUID, msgs ...infra.LLMMessage) {
	if s.rdb == nil {
		return
	}
	key := conversationKey(userID)
	for _, m := range msgs {
		raw, err := json.Marshal(m)
		if err != nil {
			continue
		}
		s.rdb.LPush(ctx, key, raw)
	}
	s.rdb.LTrim(ctx, key, 0, conversationWindow-1)
	s.rdb.Expire(ctx, key, conversationTTL)
}

// parseAssistantAction tolerates markdown code fences around the JSON.
func parseAssistantAction(completion string) (*assistantAction, error) {
	text := strings.TrimSpace(completion)
	if strings.HasPrefix(text, "```") {
		text = strings.TrimPrefix(text, "```json")
		text = strings.TrimPrefix(text, "```")
		if idx := strings.LastIndex(text, "```"); idx >= 0 {
			text = text[:idx]
		}
		text = strings.TrimSpace(text)
	}

	var action assistantAction
	if err := json.Unmarshal([]byte(text), &action); err != nil {
		return nil, err
	}
	if action.Action == "" {
		return nil, errors.New("missing action field")
	}
	return &action, nil
}

// ── Instance management ──────────────────────────────────────────────────────

func (s *whatsappService) InstanceStatus(ctx context.Context) (*dto.InstanceStatusResponse, error) {
	status, err := s.zapi.GetStatus(ctx)
	if err != nil {
		return nil, err
	}
	return &dto.InstanceStatusResponse{Connected: status.Connected, Error: status.Error}, nil
}

func (s *whatsappService) QRCode(ctx context.Context) (*dto.QRCodeResponse, error) {
	value, err := s.zapi.GetQRCode(ctx)
	if err != nil {
		return nil, err
	}
	return &dto.QRCodeResponse{Value: value}, nil
}
