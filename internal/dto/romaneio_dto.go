package dto

// ─── Filter ─────────────────────────────────────────────────────────────────

// RomaneioFilter selects the sales that go on a courier's manifest.
type RomaneioFilter struct {
	Date          string `form:"date"            validate:"omitempty,datetime=2006-01-02"` // empty = today
	CourierUserID string `form:"courier_user_id" validate:"omitempty,uuid"`
	DeliveryType  string `form:"delivery_type"   validate:"omitempty,oneof=pickup motoboy carrier"`
}

// ─── Document model ──────────────────────────────────────────────────────────
// The romaneio is rendered twice from the same document: JSON for the web
// view and PDF for print. Keep this flat and string-typed; it is a display
// artifact, not a domain object.

type RomaneioItem struct {
	ProductName string `json:"product_name"`
	Quantity    int    `json:"quantity"`
	Note        string `json:"note,omitempty"` // requisition number for manipulados
}

type RomaneioPayment struct {
	MethodName   string `json:"method_name"`
	Timing       string `json:"timing"`
	Installments int    `json:"installments"`
	TotalCents   int64  `json:"total_cents"`
	// CollectOnDelivery tells the courier to take payment at the door.
	CollectOnDelivery bool `json:"collect_on_delivery"`
}

type RomaneioEntry struct {
	SaleID     string `json:"sale_id"`
	SaleNumber int    `json:"sale_number"`
	ClientName string `json:"client_name"`
	Phone      string `json:"phone"`
	// Address pre-formatted as print lines.
	AddressLines []string `json:"address_lines"`
	// Deep links rendered as QR codes on the printed sheet.
	SaleLink     string `json:"sale_link,omitempty"`
	MapLink      string `json:"map_link,omitempty"`
	WhatsAppLink string `json:"whatsapp_link,omitempty"`

	Items         []RomaneioItem  `json:"items"`
	Payment       RomaneioPayment `json:"payment"`
	DeliveryNotes string          `json:"delivery_notes,omitempty"`

	// OutcomeChecklist lists the terminal delivery statuses the courier ticks.
	OutcomeChecklist []string `json:"outcome_checklist"`
}

type RomaneioDocument struct {
	OrganizationName string          `json:"organization_name"`
	Date             string          `json:"date"` // YYYY-MM-DD
	CourierName      string          `json:"courier_name,omitempty"`
	DeliveryType     string          `json:"delivery_type,omitempty"`
	GeneratedAt      string          `json:"generated_at"`
	Entries          []RomaneioEntry `json:"entries"`
	TotalSales       int             `json:"total_sales"`
	TotalToCollect   int64           `json:"total_to_collect_cents"`
}
