package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"vendaflow/internal/model"
	"vendaflow/internal/repository"
)

// In-memory repository stubs. DB() returns nil, so runTx executes the
// callbacks directly without a transaction.

// ─── Sale repo ──────────────────────────────────────────────────────────────

type stubSaleRepo struct {
	sales    map[uuid.UUID]*model.Sale
	manifest []model.Sale
	auths    []*model.DiscountAuthorization
	history  []model.SaleStatusHistory
	nextNum  int
}

var _ repository.SaleRepository = (*stubSaleRepo)(nil)

func newStubSaleRepo() *stubSaleRepo {
	return &stubSaleRepo{sales: map[uuid.UUID]*model.Sale{}}
}

func (r *stubSaleRepo) DB() *gorm.DB { return nil }

func (r *stubSaleRepo) Create(_ context.Context, _ *gorm.DB, s *model.Sale) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	for i := range s.Items {
		if s.Items[i].ID == uuid.Nil {
			s.Items[i].ID = uuid.New()
		}
		s.Items[i].SaleID = s.ID
	}
	r.sales[s.ID] = s
	return nil
}

func (r *stubSaleRepo) FindByID(_ context.Context, orgID, id uuid.UUID) (*model.Sale, error) {
	s, ok := r.sales[id]
	if !ok || s.OrganizationID != orgID {
		return nil, gorm.ErrRecordNotFound
	}
	return s, nil
}

func (r *stubSaleRepo) List(_ context.Context, orgID uuid.UUID, _ repository.SaleFilter) ([]model.Sale, int64, error) {
	var out []model.Sale
	for _, s := range r.sales {
		if s.OrganizationID == orgID {
			out = append(out, *s)
		}
	}
	return out, int64(len(out)), nil
}

func (r *stubSaleRepo) ListForManifest(_ context.Context, _ uuid.UUID, _ string, _, _ string) ([]model.Sale, error) {
	return r.manifest, nil
}

func (r *stubSaleRepo) SaveTx(_ *gorm.DB, s *model.Sale) error {
	r.sales[s.ID] = s
	return nil
}

func (r *stubSaleRepo) AppendHistoryTx(_ *gorm.DB, h *model.SaleStatusHistory) error {
	h.CreatedAt = time.Now()
	r.history = append(r.history, *h)
	return nil
}

func (r *stubSaleRepo) NextSaleNumber(_ context.Context, _ *gorm.DB, _ uuid.UUID) (int, error) {
	r.nextNum++
	return r.nextNum, nil
}

func (r *stubSaleRepo) FindAuthorization(_ context.Context, orgID, id uuid.UUID) (*model.DiscountAuthorization, error) {
	for _, a := range r.auths {
		if a.ID == id && a.OrganizationID == orgID {
			return a, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *stubSaleRepo) FindOpenAuthorization(_ context.Context, orgID, leadID, productID uuid.UUID) (*model.DiscountAuthorization, error) {
	for _, a := range r.auths {
		if a.OrganizationID == orgID && a.LeadID == leadID && a.ProductID == productID && a.ConsumedAt == nil {
			return a, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *stubSaleRepo) ListAuthorizations(_ context.Context, orgID uuid.UUID, openOnly bool) ([]model.DiscountAuthorization, error) {
	var out []model.DiscountAuthorization
	for _, a := range r.auths {
		if a.OrganizationID != orgID {
			continue
		}
		if openOnly && a.ConsumedAt != nil {
			continue
		}
		out = append(out, *a)
	}
	return out, nil
}

func (r *stubSaleRepo) CreateAuthorization(_ context.Context, a *model.DiscountAuthorization) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	a.CreatedAt = time.Now()
	r.auths = append(r.auths, a)
	return nil
}

func (r *stubSaleRepo) ConsumeAuthorizationTx(_ *gorm.DB, id, saleID uuid.UUID) error {
	for _, a := range r.auths {
		if a.ID == id && a.ConsumedAt == nil {
			now := time.Now()
			a.ConsumedAt = &now
			a.ConsumedBySaleID = &saleID
		}
	}
	return nil
}

// ─── Product repo ───────────────────────────────────────────────────────────

type stubProductRepo struct {
	products map[uuid.UUID]*model.Product
}

var _ repository.ProductRepository = (*stubProductRepo)(nil)

func newStubProductRepo() *stubProductRepo {
	return &stubProductRepo{products: map[uuid.UUID]*model.Product{}}
}

func (r *stubProductRepo) DB() *gorm.DB { return nil }

func (r *stubProductRepo) Create(_ context.Context, p *model.Product) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	r.products[p.ID] = p
	return nil
}

func (r *stubProductRepo) FindByID(_ context.Context, orgID, id uuid.UUID) (*model.Product, error) {
	p, ok := r.products[id]
	if !ok || p.OrganizationID != orgID {
		return nil, gorm.ErrRecordNotFound
	}
	return p, nil
}

func (r *stubProductRepo) FindByIDTx(_ *gorm.DB, id uuid.UUID) (*model.Product, error) {
	p, ok := r.products[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return p, nil
}

func (r *stubProductRepo) FindKit(_ context.Context, orgID, kitID uuid.UUID) (*model.ProductPriceKit, error) {
	for _, p := range r.products {
		if p.OrganizationID != orgID {
			continue
		}
		for i := range p.Kits {
			if p.Kits[i].ID == kitID {
				return &p.Kits[i], nil
			}
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *stubProductRepo) List(_ context.Context, orgID uuid.UUID, _ repository.ProductFilter) ([]model.Product, int64, error) {
	var out []model.Product
	for _, p := range r.products {
		if p.OrganizationID == orgID {
			out = append(out, *p)
		}
	}
	return out, int64(len(out)), nil
}

func (r *stubProductRepo) Update(_ context.Context, p *model.Product) error {
	r.products[p.ID] = p
	return nil
}

func (r *stubProductRepo) SetActive(_ context.Context, orgID, id uuid.UUID, active bool) error {
	if p, ok := r.products[id]; ok && p.OrganizationID == orgID {
		p.Active = active
	}
	return nil
}

func (r *stubProductRepo) ReplaceKits(_ context.Context, productID uuid.UUID, kits []model.ProductPriceKit) error {
	if p, ok := r.products[productID]; ok {
		p.Kits = kits
	}
	return nil
}

func (r *stubProductRepo) UpdateCountersTx(_ *gorm.DB, id uuid.UUID, actual, reserved int) error {
	p, ok := r.products[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	p.StockActual = actual
	p.StockReserved = reserved
	return nil
}

// ─── User repo ──────────────────────────────────────────────────────────────

type stubUserRepo struct {
	users map[uuid.UUID]*model.User
}

var _ repository.UserRepository = (*stubUserRepo)(nil)

func newStubUserRepo() *stubUserRepo {
	return &stubUserRepo{users: map[uuid.UUID]*model.User{}}
}

func (r *stubUserRepo) Create(_ context.Context, u *model.User) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	r.users[u.ID] = u
	return nil
}

func (r *stubUserRepo) FindByID(_ context.Context, id uuid.UUID) (*model.User, error) {
	u, ok := r.users[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return u, nil
}

func (r *stubUserRepo) FindByEmail(_ context.Context, email string) (*model.User, error) {
	for _, u := range r.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *stubUserRepo) FindByPhoneVariants(_ context.Context, variants []string) (*model.User, error) {
	for _, u := range r.users {
		if u.Phone == nil || !u.Active {
			continue
		}
		for _, v := range variants {
			if *u.Phone == v {
				return u, nil
			}
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *stubUserRepo) List(_ context.Context, orgID uuid.UUID, includeInactive bool) ([]model.User, error) {
	var out []model.User
	for _, u := range r.users {
		if u.OrganizationID == nil || *u.OrganizationID != orgID {
			continue
		}
		if !includeInactive && !u.Active {
			continue
		}
		out = append(out, *u)
	}
	return out, nil
}

func (r *stubUserRepo) Update(_ context.Context, u *model.User) error {
	r.users[u.ID] = u
	return nil
}

func (r *stubUserRepo) SoftDelete(_ context.Context, _, id uuid.UUID) error {
	if u, ok := r.users[id]; ok {
		u.Active = false
	}
	return nil
}

func (r *stubUserRepo) Reactivate(_ context.Context, _, id uuid.UUID) error {
	if u, ok := r.users[id]; ok {
		u.Active = true
	}
	return nil
}

// ─── Organization repo ──────────────────────────────────────────────────────

type stubOrgRepo struct {
	orgs map[uuid.UUID]*model.Organization
}

var _ repository.OrganizationRepository = (*stubOrgRepo)(nil)

func newStubOrgRepo() *stubOrgRepo {
	return &stubOrgRepo{orgs: map[uuid.UUID]*model.Organization{}}
}

func (r *stubOrgRepo) Create(_ context.Context, o *model.Organization) error {
	if o.ID == uuid.Nil {
		o.ID = uuid.New()
	}
	r.orgs[o.ID] = o
	return nil
}

func (r *stubOrgRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Organization, error) {
	o, ok := r.orgs[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return o, nil
}

func (r *stubOrgRepo) FindBySlug(_ context.Context, slug string) (*model.Organization, error) {
	for _, o := range r.orgs {
		if o.Slug == slug {
			return o, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *stubOrgRepo) List(_ context.Context, includeInactive bool) ([]model.Organization, error) {
	var out []model.Organization
	for _, o := range r.orgs {
		if !includeInactive && !o.Active {
			continue
		}
		out = append(out, *o)
	}
	return out, nil
}

func (r *stubOrgRepo) Update(_ context.Context, o *model.Organization) error {
	r.orgs[o.ID] = o
	return nil
}

func (r *stubOrgRepo) SetActive(_ context.Context, id uuid.UUID, active bool) error {
	if o, ok := r.orgs[id]; ok {
		o.Active = active
	}
	return nil
}

// ─── Lead repo ──────────────────────────────────────────────────────────────

type stubLeadRepo struct {
	leads map[uuid.UUID]*model.Lead
}

var _ repository.LeadRepository = (*stubLeadRepo)(nil)

func newStubLeadRepo() *stubLeadRepo {
	return &stubLeadRepo{leads: map[uuid.UUID]*model.Lead{}}
}

func (r *stubLeadRepo) Create(_ context.Context, l *model.Lead) error {
	if l.ID == uuid.Nil {
		l.ID = uuid.New()
	}
	l.CreatedAt = time.Now()
	r.leads[l.ID] = l
	return nil
}

func (r *stubLeadRepo) FindByID(_ context.Context, orgID, id uuid.UUID) (*model.Lead, error) {
	l, ok := r.leads[id]
	if !ok || l.OrganizationID != orgID {
		return nil, gorm.ErrRecordNotFound
	}
	return l, nil
}

func (r *stubLeadRepo) FindByPhoneVariants(_ context.Context, orgID uuid.UUID, variants []string) (*model.Lead, error) {
	for _, l := range r.leads {
		if l.OrganizationID != orgID {
			continue
		}
		for _, v := range variants {
			if l.Phone == v {
				return l, nil
			}
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *stubLeadRepo) List(_ context.Context, orgID uuid.UUID, _ repository.LeadFilter) ([]model.Lead, int64, error) {
	var out []model.Lead
	for _, l := range r.leads {
		if l.OrganizationID == orgID {
			out = append(out, *l)
		}
	}
	return out, int64(len(out)), nil
}

func (r *stubLeadRepo) Update(_ context.Context, l *model.Lead) error {
	r.leads[l.ID] = l
	return nil
}

func (r *stubLeadRepo) SaveAnswers(_ context.Context, _ uuid.UUID, _ []model.KeyQuestionAnswer) error {
	return nil
}

// ─── Stock repo ─────────────────────────────────────────────────────────────

type stubStockRepo struct {
	movements     []model.StockMovement
	compensations []*model.StockCompensation
}

var _ repository.StockRepository = (*stubStockRepo)(nil)

func newStubStockRepo() *stubStockRepo { return &stubStockRepo{} }

func (r *stubStockRepo) CreateMovementTx(_ *gorm.DB, m *model.StockMovement) error {
	m.CreatedAt = time.Now()
	r.movements = append(r.movements, *m)
	return nil
}

func (r *stubStockRepo) ListMovements(_ context.Context, orgID uuid.UUID, _ repository.StockMovementFilter) ([]model.StockMovement, int64, error) {
	var out []model.StockMovement
	for _, m := range r.movements {
		if m.OrganizationID == orgID {
			out = append(out, m)
		}
	}
	return out, int64(len(out)), nil
}

func (r *stubStockRepo) CreateCompensation(_ context.Context, c *model.StockCompensation) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	c.CreatedAt = time.Now()
	r.compensations = append(r.compensations, c)
	return nil
}

func (r *stubStockRepo) UpdateCompensation(_ context.Context, c *model.StockCompensation) error {
	for i, e := range r.compensations {
		if e.ID == c.ID {
			r.compensations[i] = c
		}
	}
	return nil
}

func (r *stubStockRepo) ListFailedCompensations(_ context.Context, before time.Time, limit int) ([]model.StockCompensation, error) {
	var out []model.StockCompensation
	for _, c := range r.compensations {
		if len(out) == limit {
			break
		}
		if c.Status != model.CompensationFailed {
			continue
		}
		if c.NextRetryAt != nil && c.NextRetryAt.After(before) {
			continue
		}
		out = append(out, *c)
	}
	return out, nil
}

func (r *stubStockRepo) ListCompensationsBySale(_ context.Context, orgID, saleID uuid.UUID) ([]model.StockCompensation, error) {
	var out []model.StockCompensation
	for _, c := range r.compensations {
		if c.OrganizationID == orgID && c.SaleID == saleID {
			out = append(out, *c)
		}
	}
	return out, nil
}

// ─── Recording email sender ─────────────────────────────────────────────────

type sentEmail struct {
	to      []string
	subject string
	html    string
}

// stubEmailSender captures enqueued emails.
type stubEmailSender struct {
	sent []sentEmail
}

var _ EmailSender = (*stubEmailSender)(nil)

func (s *stubEmailSender) EnqueueEmail(_ context.Context, to []string, subject, html string) error {
	s.sent = append(s.sent, sentEmail{to: to, subject: subject, html: html})
	return nil
}

// ─── Recording stock service ────────────────────────────────────────────────

// recordingStock captures the stock operations a sale transition requested.
type recordingStock struct {
	ops []string
}

var _ StockService = (*recordingStock)(nil)

func (s *recordingStock) Apply(_ context.Context, op string, _, _ uuid.UUID, _ []model.SaleItem) {
	s.ops = append(s.ops, op)
}

func (s *recordingStock) Replay(_ context.Context, _ *model.StockCompensation, _ []model.SaleItem) error {
	return nil
}

func (s *recordingStock) AdjustManual(_ context.Context, _, _ uuid.UUID, _ int, _ string) error {
	return nil
}

func (s *recordingStock) ListMovements(_ context.Context, _ uuid.UUID, _ repository.StockMovementFilter) ([]model.StockMovement, int64, error) {
	return nil, 0, nil
}
