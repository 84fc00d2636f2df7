// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package catalog

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"
)

// Approval statuses shared by every reviewable entity.
const (
	StatusDraft           = "DRAFT"
	StatusPendingApproval = "PENDING_APPROVAL"
	StatusApproved        = "APPROVED"
	StatusRejected        = "REJECTED"
)

// Page is a paginated list response.
type Page[T any] struct {
	Items    []T `json:"items"`
	Total    int `json:"total"`
	Page     int `json:"page"`
	PageSize int `json:"page_size"`
	Pages    int `json:"pages"`
}

// HasNext reports whether a later page exists.
func (p Page[T]) HasNext() bool {
	return p.Page < p.Pages
}

// HasPrev reports whether an earlier page exists.
func (p Page[T]) HasPrev() bool {
	return p.Page > 1
}

// maxListPages bounds AllPages against a backend that ignores the page
// parameter and keeps returning full pages.
const maxListPages = 500

// AllPages collects every item of a paged list by requesting pages of
// pageSize from fetch until a short or final page arrives.
func AllPages[T any](ctx context.Context, pageSize int, fetch func(ctx context.Context, page, pageSize int) (*Page[T], error)) ([]T, error) {
	var all []T
	for page := 1; page <= maxListPages; page++ {
		p, err := fetch(ctx, page, pageSize)
		if err != nil {
			return nil, err
		}
		all = append(all, p.Items...)
		if len(p.Items) < pageSize || (p.Pages > 0 && page >= p.Pages) || (p.Total > 0 && len(all) >= p.Total) {
			return all, nil
		}
	}
	return nil, fmt.Errorf("list has more than %d pages of %d", maxListPages, pageSize)
}

// Timestamp decodes the backend's datetimes, which may omit the zone.
type Timestamp struct {
	time.Time
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// UnmarshalJSON implements json.Unmarshaler.
func (t *Timestamp) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, []byte("null")) {
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	if s == "" {
		return nil
	}
	for _, layout := range timestampLayouts {
		if parsed, err := time.Parse(layout, s); err == nil {
			t.Time = parsed
			return nil
		}
	}
	return fmt.Errorf("invalid timestamp %q", s)
}

// MarshalJSON implements json.Marshaler.
func (t Timestamp) MarshalJSON() ([]byte, error) {
	if t.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(t.Format(time.RFC3339))
}

// User is the signed-in backend account.
type User struct {
	ID          string `json:"id"`
	Email       string `json:"email"`
	Username    string `json:"username"`
	FirstName   string `json:"first_name,omitempty"`
	LastName    string `json:"last_name,omitempty"`
	IsActive    bool   `json:"is_active"`
	IsSuperuser bool   `json:"is_superuser"`
}

// DisplayName returns the best human-readable name for the user.
func (u User) DisplayName() string {
	switch {
	case u.FirstName != "" && u.LastName != "":
		return u.FirstName + " " + u.LastName
	case u.FirstName != "":
		return u.FirstName
	case u.Username != "":
		return u.Username
	default:
		return u.Email
	}
}

// AuthResponse is returned by the login endpoint.
type AuthResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

// Translation is a part-name translation record.
type Translation struct {
	ID                string    `json:"id"`
	PartNameEN        string    `json:"part_name_en"`
	PartNamePR        string    `json:"part_name_pr,omitempty"`
	PartNameFR        string    `json:"part_name_fr,omitempty"`
	HSCode            string    `json:"hs_code,omitempty"`
	CategoryEN        string    `json:"category_en,omitempty"`
	DriveSideSpecific string    `json:"drive_side_specific,omitempty"`
	AlternativeNames  string    `json:"alternative_names,omitempty"`
	Links             string    `json:"links,omitempty"`
	ApprovalStatus    string    `json:"approval_status,omitempty"`
	CreatedAt         Timestamp `json:"created_at"`
	UpdatedAt         Timestamp `json:"updated_at"`
}

// TranslationPayload is the write shape for translations. Optional fields
// that are empty are omitted; DriveSideSpecific is always sent.
type TranslationPayload struct {
	PartNameEN        string `json:"part_name_en"`
	PartNamePR        string `json:"part_name_pr,omitempty"`
	PartNameFR        string `json:"part_name_fr,omitempty"`
	HSCode            string `json:"hs_code,omitempty"`
	CategoryEN        string `json:"category_en,omitempty"`
	DriveSideSpecific string `json:"drive_side_specific"`
	AlternativeNames  string `json:"alternative_names,omitempty"`
	Links             string `json:"links,omitempty"`
}

// TranslationFilter filters the translation list.
type TranslationFilter struct {
	Search            string
	CategoryEN        string
	DriveSideSpecific string
	Page              int
	PageSize          int
}

// TranslationUploadError is one failed CSV row.
type TranslationUploadError struct {
	Row   int            `json:"row"`
	Data  map[string]any `json:"data,omitempty"`
	Error string         `json:"error"`
}

// TranslationUploadResult is the translations CSV import outcome.
type TranslationUploadResult struct {
	SuccessCount int                      `json:"success_count"`
	ErrorCount   int                      `json:"error_count"`
	Errors       []TranslationUploadError `json:"errors"`
	CreatedIDs   []string                 `json:"created_ids"`
}

// BulkUploadResult is the CSV import outcome for reference data.
type BulkUploadResult struct {
	Created int      `json:"created"`
	Updated int      `json:"updated"`
	Errors  []string `json:"errors"`
}

// Category is a part category.
type Category struct {
	ID             string `json:"id"`
	CategoryNameEN string `json:"category_name_en"`
	CategoryNamePR string `json:"category_name_pr,omitempty"`
	CategoryNameFR string `json:"category_name_fr,omitempty"`
}

// CategoryPayload is the write shape for categories.
type CategoryPayload struct {
	CategoryNameEN string `json:"category_name_en"`
	CategoryNamePR string `json:"category_name_pr,omitempty"`
	CategoryNameFR string `json:"category_name_fr,omitempty"`
}

// Position is a mounting position of a part.
type Position struct {
	ID         string `json:"id"`
	PositionID string `json:"position_id"`
	PositionEN string `json:"position_en"`
	PositionPR string `json:"position_pr,omitempty"`
	PositionFR string `json:"position_fr,omitempty"`
}

// Part drive sides.
const (
	DriveSideNA  = "NA"
	DriveSideLHD = "LHD"
	DriveSideRHD = "RHD"
)

// MaxPartIDLength is the longest part identifier the backend accepts.
const MaxPartIDLength = 12

// PartTranslation is the translation embedded in a part.
type PartTranslation struct {
	PartNameEN string `json:"part_name_en"`
	PartNamePR string `json:"part_name_pr,omitempty"`
	PartNameFR string `json:"part_name_fr,omitempty"`
}

// Part is a catalog part.
type Part struct {
	ID              string           `json:"id"`
	PartID          string           `json:"part_id"`
	MfgID           string           `json:"mfg_id,omitempty"`
	PartNameEN      string           `json:"part_name_en,omitempty"`
	PositionID      string           `json:"position_id,omitempty"`
	DriveSide       string           `json:"drive_side"`
	Designation     string           `json:"designation,omitempty"`
	MOQ             *int             `json:"moq,omitempty"`
	Weight          *float64         `json:"weight,omitempty"`
	Width           *float64         `json:"width,omitempty"`
	Length          *float64         `json:"length,omitempty"`
	Height          *float64         `json:"height,omitempty"`
	Note            string           `json:"note,omitempty"`
	ImageURL        string           `json:"image_url,omitempty"`
	ApprovalStatus  string           `json:"approval_status,omitempty"`
	Manufacturer    *Manufacturer    `json:"manufacturer,omitempty"`
	PartTranslation *PartTranslation `json:"part_translation,omitempty"`
	Position        *Position        `json:"position,omitempty"`
	CreatedAt       Timestamp        `json:"created_at"`
	UpdatedAt       Timestamp        `json:"updated_at"`
}

// PartPayload is the write shape for parts.
type PartPayload struct {
	PartID      string   `json:"part_id"`
	MfgID       string   `json:"mfg_id,omitempty"`
	PartNameEN  string   `json:"part_name_en,omitempty"`
	PositionID  string   `json:"position_id,omitempty"`
	DriveSide   string   `json:"drive_side,omitempty"`
	Designation string   `json:"designation,omitempty"`
	MOQ         *int     `json:"moq,omitempty"`
	Weight      *float64 `json:"weight,omitempty"`
	Width       *float64 `json:"width,omitempty"`
	Length      *float64 `json:"length,omitempty"`
	Height      *float64 `json:"height,omitempty"`
	Note        string   `json:"note,omitempty"`
	ImageURL    string   `json:"image_url,omitempty"`
}

// PartFilter filters the part list.
type PartFilter struct {
	Search     string
	MfgID      string
	PartNameEN string
	DriveSide  string
	Page       int
	PageSize   int
}

// PartDeleteResult is returned when a part is deleted.
type PartDeleteResult struct {
	Message string `json:"message"`
	PartID  string `json:"part_id"`
}

// Equivalence links a part to an interchangeable part.
type Equivalence struct {
	PartID           string `json:"part_id"`
	EquivalentPartID string `json:"equivalent_part_id"`
	EquivalentPart   Part   `json:"equivalent_part"`
}

// BulkEquivalenceResult is the outcome of a bulk equivalence request.
type BulkEquivalenceResult struct {
	Created          int      `json:"created"`
	Skipped          int      `json:"skipped"`
	AutoCreatedParts []string `json:"auto_created_parts"`
	Errors           []string `json:"errors"`
}

// DimensionSuggestions are dimension defaults learned from parts sharing a name.
type DimensionSuggestions struct {
	Suggestions []map[string]any `json:"suggestions"`
	Count       int              `json:"count"`
	Recommended map[string]any   `json:"recommended"`
}

// HSCode is a harmonized system code.
type HSCode struct {
	HSCode         string `json:"hs_code"`
	DescriptionEN  string `json:"description_en,omitempty"`
	DescriptionPR  string `json:"description_pr,omitempty"`
	DescriptionPT  string `json:"description_pt,omitempty"`
	ApprovalStatus string `json:"approval_status,omitempty"`
}

// HSCodePayload is the write shape for HS codes. HSCode is ignored on update.
type HSCodePayload struct {
	HSCode        string `json:"hs_code,omitempty"`
	DescriptionEN string `json:"description_en,omitempty"`
	DescriptionPR string `json:"description_pr,omitempty"`
	DescriptionPT string `json:"description_pt,omitempty"`
}

// HSCodeWithTariffs is an HS code with its per-country tariffs.
type HSCodeWithTariffs struct {
	HSCode
	Tariffs []HSCodeTariff `json:"tariffs"`
}

// HSCodeTariff is a country-specific tariff rate.
type HSCodeTariff struct {
	HSCode      string    `json:"hs_code"`
	CountryName string    `json:"country_name"`
	TariffRate  *float64  `json:"tariff_rate,omitempty"`
	LastUpdated Timestamp `json:"last_updated"`
}

// HSCodeFilter filters the HS code list.
type HSCodeFilter struct {
	Search string
	Skip   int
	Limit  int
	Status string
}

// Manufacturer types.
const (
	MfgTypeOEM             = "OEM"
	MfgTypeAPM             = "APM"
	MfgTypeRemanufacturers = "Remanufacturers"
)

// Manufacturer is a part maker.
type Manufacturer struct {
	ID             string         `json:"id"`
	MfgID          string         `json:"mfg_id"`
	MfgName        string         `json:"mfg_name"`
	MfgType        string         `json:"mfg_type"`
	Country        string         `json:"country,omitempty"`
	Website        string         `json:"website,omitempty"`
	ContactInfo    map[string]any `json:"contact_info,omitempty"`
	Certification  string         `json:"certification,omitempty"`
	ApprovalStatus string         `json:"approval_status,omitempty"`
}

// ManufacturerPayload is the write shape for manufacturers.
type ManufacturerPayload struct {
	MfgID         string `json:"mfg_id,omitempty"`
	MfgName       string `json:"mfg_name"`
	MfgType       string `json:"mfg_type,omitempty"`
	Country       string `json:"country,omitempty"`
	Website       string `json:"website,omitempty"`
	Certification string `json:"certification,omitempty"`
}

// Port types.
const (
	PortTypeSea  = "Sea"
	PortTypeAir  = "Air"
	PortTypeLand = "Land"
)

// Port is a sea, air or land port.
type Port struct {
	ID             string `json:"id"`
	PortCode       string `json:"port_code"`
	PortName       string `json:"port_name,omitempty"`
	Country        string `json:"country,omitempty"`
	CountryName    string `json:"country_name,omitempty"`
	City           string `json:"city,omitempty"`
	Type           string `json:"type,omitempty"`
	ApprovalStatus string `json:"approval_status,omitempty"`
}

// PortPayload is the write shape for ports.
type PortPayload struct {
	PortCode string `json:"port_code"`
	PortName string `json:"port_name,omitempty"`
	Country  string `json:"country,omitempty"`
	City     string `json:"city,omitempty"`
	Type     string `json:"type,omitempty"`
}

// Country is a reference country with its currency.
type Country struct {
	Code         string `json:"code"`
	Name         string `json:"name"`
	CurrencyCode string `json:"currency_code,omitempty"`
	CurrencyName string `json:"currency_name,omitempty"`
}

// Vehicle is a vehicle record keyed by VIN.
type Vehicle struct {
	ID           string `json:"id"`
	VIN          string `json:"vin"`
	Make         string `json:"make"`
	Model        string `json:"model"`
	Year         int    `json:"year"`
	Engine       string `json:"engine,omitempty"`
	Trim         string `json:"trim,omitempty"`
	Transmission string `json:"transmission,omitempty"`
	DriveType    string `json:"drive_type,omitempty"`
}

// VehiclePayload is the write shape for vehicles.
type VehiclePayload struct {
	VIN          string `json:"vin"`
	Make         string `json:"make"`
	Model        string `json:"model"`
	Year         int    `json:"year"`
	Engine       string `json:"engine,omitempty"`
	Trim         string `json:"trim,omitempty"`
	Transmission string `json:"transmission,omitempty"`
	DriveType    string `json:"drive_type,omitempty"`
}

// VehicleEquivalence maps a VIN prefix to equivalent vehicle families.
type VehicleEquivalence struct {
	ID                 string `json:"id"`
	VINPrefix          string `json:"vin_prefix"`
	EquivalentFamilies string `json:"equivalent_families"`
}

// VehicleEquivalencePayload is the write shape for vehicle equivalences.
type VehicleEquivalencePayload struct {
	VINPrefix          string `json:"vin_prefix"`
	EquivalentFamilies string `json:"equivalent_families"`
}

// VehiclePartCompatibility records that a part fits a vehicle.
type VehiclePartCompatibility struct {
	ID        string `json:"id"`
	VehicleID string `json:"vehicle_id"`
	PartID    string `json:"part_id"`
	Notes     string `json:"notes,omitempty"`
}

// VehiclePartCompatibilityPayload is the write shape for compatible parts.
type VehiclePartCompatibilityPayload struct {
	VehicleID string `json:"vehicle_id"`
	PartID    string `json:"part_id"`
	Notes     string `json:"notes,omitempty"`
}

// Partner types.
const (
	PartnerSupplier  = "supplier"
	PartnerCustomer  = "customer"
	PartnerARStorage = "AR_storage"
	PartnerForwarder = "forwarder"
)

// Partner is a supplier, customer, storage or forwarding company.
type Partner struct {
	ID           string    `json:"id"`
	Code         string    `json:"code,omitempty"`
	Name         string    `json:"name,omitempty"`
	StreetNumber string    `json:"street_number,omitempty"`
	City         string    `json:"city,omitempty"`
	Country      string    `json:"country,omitempty"`
	Type         string    `json:"type,omitempty"`
	Contacts     []Contact `json:"contacts,omitempty"`
}

// PartnerPayload is the write shape for partners.
type PartnerPayload struct {
	Code         string `json:"code,omitempty"`
	Name         string `json:"name,omitempty"`
	StreetNumber string `json:"street_number,omitempty"`
	City         string `json:"city,omitempty"`
	Country      string `json:"country,omitempty"`
	Type         string `json:"type,omitempty"`
}

// PartnerFilter filters the partner list.
type PartnerFilter struct {
	Search string
	Type   string
	Skip   int
	Limit  int
}

// Contact is a person at a partner.
type Contact struct {
	ID        string `json:"id"`
	PartnerID string `json:"partner_id"`
	FullName  string `json:"full_name,omitempty"`
	JobTitle  string `json:"job_title,omitempty"`
	Email     string `json:"email,omitempty"`
	Phone1    string `json:"phone1,omitempty"`
	Phone2    string `json:"phone2,omitempty"`
}

// ContactPayload is the write shape for contacts.
type ContactPayload struct {
	PartnerID string `json:"partner_id,omitempty"`
	FullName  string `json:"full_name,omitempty"`
	JobTitle  string `json:"job_title,omitempty"`
	Email     string `json:"email,omitempty"`
	Phone1    string `json:"phone1,omitempty"`
	Phone2    string `json:"phone2,omitempty"`
}

// DashboardStats are the headline counts on the dashboard.
type DashboardStats struct {
	TotalParts          int `json:"total_parts"`
	TotalTranslations   int `json:"total_translations"`
	PendingTranslations int `json:"pending_translations"`
	TotalManufacturers  int `json:"total_manufacturers"`
	TotalPartners       int `json:"total_partners"`
	PendingApprovals    int `json:"pending_approvals"`
}

// ExtractedQuoteItem is one line of an extracted quote.
type ExtractedQuoteItem struct {
	ID         string   `json:"id,omitempty"`
	PartName   string   `json:"part_name"`
	Quantity   float64  `json:"quantity"`
	UnitPrice  float64  `json:"unit_price"`
	TaxCode    string   `json:"tax_code,omitempty"`
	Discount   *float64 `json:"discount,omitempty"`
	TotalPrice float64  `json:"total_price"`
	Position   int      `json:"position,omitempty"`
}

// Uploader is the account that uploaded a quote.
type Uploader struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

// ExtractedQuote is a supplier quote extracted from an uploaded document.
type ExtractedQuote struct {
	ID                 string               `json:"id"`
	QuoteNumber        string               `json:"quote_number,omitempty"`
	QuoteDate          string               `json:"quote_date,omitempty"`
	ValidUntil         string               `json:"valid_until,omitempty"`
	VehicleVIN         string               `json:"vehicle_vin,omitempty"`
	VehicleMake        string               `json:"vehicle_make,omitempty"`
	VehicleModel       string               `json:"vehicle_model,omitempty"`
	CustomerName       string               `json:"customer_name,omitempty"`
	CustomerCity       string               `json:"customer_city,omitempty"`
	CustomerCountry    string               `json:"customer_country,omitempty"`
	CustomerPhone      string               `json:"customer_phone,omitempty"`
	CustomerEmail      string               `json:"customer_email,omitempty"`
	Currency           string               `json:"currency"`
	OriginIncoterm     string               `json:"origin_incoterm,omitempty"`
	OriginPort         string               `json:"origin_port,omitempty"`
	ExtractionStatus   string               `json:"extraction_status"`
	UploadedBy         string               `json:"uploaded_by,omitempty"`
	Uploader           *Uploader            `json:"uploader,omitempty"`
	Items              []ExtractedQuoteItem `json:"items"`
	AttachmentFilename string               `json:"attachment_filename,omitempty"`
	AttachmentMIMEType string               `json:"attachment_mime_type,omitempty"`
	CreatedAt          Timestamp            `json:"created_at"`
	UpdatedAt          Timestamp            `json:"updated_at"`
}

// ExtractedQuoteUpdate is the write shape for quote corrections.
type ExtractedQuoteUpdate struct {
	QuoteNumber     string               `json:"quote_number,omitempty"`
	QuoteDate       string               `json:"quote_date,omitempty"`
	ValidUntil      string               `json:"valid_until,omitempty"`
	VehicleVIN      string               `json:"vehicle_vin,omitempty"`
	VehicleMake     string               `json:"vehicle_make,omitempty"`
	VehicleModel    string               `json:"vehicle_model,omitempty"`
	CustomerName    string               `json:"customer_name,omitempty"`
	CustomerCity    string               `json:"customer_city,omitempty"`
	CustomerCountry string               `json:"customer_country,omitempty"`
	CustomerPhone   string               `json:"customer_phone,omitempty"`
	CustomerEmail   string               `json:"customer_email,omitempty"`
	Currency        string               `json:"currency,omitempty"`
	OriginIncoterm  string               `json:"origin_incoterm,omitempty"`
	OriginPort      string               `json:"origin_port,omitempty"`
	Items           []ExtractedQuoteItem `json:"items"`
}

// QuoteFilter filters the extracted quote list.
type QuoteFilter struct {
	Search           string
	ExtractionStatus string
	UploadedBy       string
	Page             int
	PageSize         int
}

// ApprovalLog is one entry of the backend's approval history.
type ApprovalLog struct {
	ID               string    `json:"id"`
	EntityType       string    `json:"entity_type"`
	EntityID         string    `json:"entity_id"`
	EntityIdentifier string    `json:"entity_identifier,omitempty"`
	OldStatus        string    `json:"old_status,omitempty"`
	NewStatus        string    `json:"new_status"`
	ReviewedBy       string    `json:"reviewed_by"`
	ReviewNotes      string    `json:"review_notes,omitempty"`
	CreatedAt        Timestamp `json:"created_at"`
}

// PriceTier is a named price level, e.g. wholesale or retail.
type PriceTier struct {
	ID          string    `json:"id"`
	TierName    string    `json:"tier_name"`
	Description string    `json:"description,omitempty"`
	TierKind    string    `json:"tier_kind,omitempty"`
	CreatedAt   Timestamp `json:"created_at"`
	UpdatedAt   Timestamp `json:"updated_at"`
}

// PriceTierPayload is the write shape for price tiers.
type PriceTierPayload struct {
	TierName    string `json:"tier_name"`
	Description string `json:"description,omitempty"`
	TierKind    string `json:"tier_kind,omitempty"`
}

// PartPrice is the price of one part in one tier. PartID is the part
// number, not the record ID.
type PartPrice struct {
	ID        string    `json:"id"`
	PartID    string    `json:"part_id"`
	TierID    string    `json:"tier_id"`
	Price     *float64  `json:"price"`
	CreatedAt Timestamp `json:"created_at"`
	TierName  string    `json:"tier_name,omitempty"`
	TierKind  string    `json:"tier_kind,omitempty"`
}

// PartPricePayload creates a tier price.
type PartPricePayload struct {
	PartID string   `json:"part_id"`
	TierID string   `json:"tier_id"`
	Price  *float64 `json:"price,omitempty"`
}

// PartPriceUpdate changes a tier price.
type PartPriceUpdate struct {
	Price *float64 `json:"price"`
}

// AuditLog is one entry of the backend's audit trail.
type AuditLog struct {
	ID               string         `json:"id"`
	UserID           string         `json:"user_id,omitempty"`
	Username         string         `json:"username,omitempty"`
	Action           string         `json:"action"`
	EntityType       string         `json:"entity_type"`
	EntityID         string         `json:"entity_id,omitempty"`
	EntityIdentifier string         `json:"entity_identifier,omitempty"`
	Changes          map[string]any `json:"changes,omitempty"`
	IPAddress        string         `json:"ip_address,omitempty"`
	UserAgent        string         `json:"user_agent,omitempty"`
	CreatedAt        Timestamp      `json:"created_at"`
}

// AuditLogFilter filters the audit trail. Zero values are ignored.
type AuditLogFilter struct {
	Action     string
	EntityType string
	UserID     string
	Start      time.Time
	End        time.Time
	Page       int
	PageSize   int
}
