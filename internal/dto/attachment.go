package dto

// MainAttachmentRequest carries the form fields sent with a lampiran utama upload.
// Chapters holds the CALK chapter index as a JSON array.
type MainAttachmentRequest struct {
	RomanLabel     string   `form:"romawiLampiran" validate:"required,max=20"`
	DividerTitle   string   `form:"judulPembatas" validate:"required,max=500"`
	FooterText     string   `form:"footerText" validate:"max=255"`
	FooterWidth    float64  `form:"footerWidth" validate:"gte=0,lte=100"`
	FooterX        float64  `form:"footerX"`
	FooterY        *float64 `form:"footerY" validate:"omitempty,gte=0"`
	FooterHeight   float64  `form:"footerHeight" validate:"gte=0"`
	FooterFontSize float64  `form:"footerFontSize" validate:"gte=0,lte=72"`
	PageCount      int      `form:"jumlahHalaman" validate:"gte=0"`
	IsCalk         bool     `form:"isCalk"`
	Chapters       string   `form:"calkBab"`
}

// SupportingAttachmentRequest carries the form fields of a lampiran pendukung upload.
type SupportingAttachmentRequest struct {
	Title string `form:"title" json:"title" validate:"required,max=500"`
}

// MoveRequest moves one attachment a single position.
type MoveRequest struct {
	Direction string `json:"direction" validate:"required,oneof=up down"`
}

// ReorderRequest lists every attachment id of a document in the new order.
type ReorderRequest struct {
	IDs []string `json:"ids" validate:"required,min=1,dive,required"`
}
