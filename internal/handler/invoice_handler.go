package handler

import (
	"bytes"
	_ "embed"
	"html/template"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"leisuretimez/internal/middleware"
	"leisuretimez/internal/models"
	"leisuretimez/internal/service"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
)

//go:embed templates/invoice.html
var invoiceHTML string

var invoiceTmpl = template.Must(template.New("invoice").Parse(invoiceHTML))

type InvoiceHandler struct {
	svc *service.InvoiceService
}

func NewInvoiceHandler(svc *service.InvoiceService) *InvoiceHandler {
	return &InvoiceHandler{svc: svc}
}

func (h *InvoiceHandler) Preview(c *gin.Context) {
	inv, err := h.svc.Owned(c.Param("inv"), middleware.GetUserID(c), middleware.IsStaff(c))
	if err != nil {
		failStatus(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"invoice":        inv,
		"booking_id":     inv.Booking.BookingID,
		"items":          service.ParseInvoiceItems(inv.Items),
		"subtotal":       service.FormatCents(inv.SubtotalCents),
		"tax_amount":     service.FormatCents(inv.TaxAmountCents),
		"service_charge": service.FormatCents(inv.AdminFeeCents),
		"total":          service.FormatCents(inv.TotalCents),
	})
}

func (h *InvoiceHandler) MakePayment(c *gin.Context) {
	p, err := h.svc.Pay(c.Param("inv"), middleware.GetUserID(c), middleware.IsStaff(c))
	if err != nil {
		failStatus(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "success", "message": "Payment successful", "payment_id": p.PaymentID})
}

// Download serves the stored PDF, rendering it again if the file went missing.
func (h *InvoiceHandler) Download(c *gin.Context) {
	inv, err := h.svc.Owned(c.Param("invoice_id"), middleware.GetUserID(c), middleware.IsStaff(c))
	if err != nil {
		fail(c, err)
		return
	}
	path, err := h.svc.EnsurePDF(c.Request.Context(), inv)
	if err != nil {
		fail(c, err)
		return
	}
	c.FileAttachment(path, filepath.Base(path))
}

type invoicePage struct {
	InvoiceNumber string
	Date          time.Time
	Paid          bool
	Customer      string
	Email         string
	Phone         string
	Address       string
	City          string
	State         string
	Country       string
	Booking       *models.Booking
	Destinations  []string
	Items         []service.InvoiceItem
	Subtotal      string
	ServicePct    string
	ServiceAmount string
	TaxPct        string
	TaxAmount     string
	Total         string
}

// splitDestinations accepts "a - b - c" as well as "a, b, c".
func splitDestinations(s string) []string {
	sep := "-"
	if !strings.Contains(s, "-") {
		sep = ","
	}
	var out []string
	for _, d := range strings.Split(s, sep) {
		if d = strings.TrimSpace(d); d != "" {
			out = append(out, d)
		}
	}
	return out
}

// Print renders the HTML page the PDF service converts. It is fetched by the renderer,
// so it carries no auth.
func (h *InvoiceHandler) Print(c *gin.Context) {
	inv, err := h.svc.Get(c.Param("invoice_id"))
	if err != nil {
		fail(c, err)
		return
	}
	b := inv.Booking
	if b == nil {
		fail(c, service.ErrBookingNotFound)
		return
	}
	page := invoicePage{
		InvoiceNumber: inv.InvoiceID,
		Date:          inv.CreatedAt,
		Paid:          inv.Paid,
		Customer:      strings.TrimSpace(b.Lastname + " " + b.Firstname),
		Email:         b.Email,
		Phone:         b.Phone,
		Address:       b.Address,
		City:          b.City,
		State:         b.State,
		Country:       b.Country,
		Booking:       b,
		Destinations:  splitDestinations(b.Destinations),
		Items:         service.ParseInvoiceItems(inv.Items),
		Subtotal:      service.FormatCents(inv.SubtotalCents),
		ServicePct:    strconv.FormatFloat(inv.AdminPercentage, 'f', -1, 64),
		ServiceAmount: service.FormatCents(inv.AdminFeeCents),
		TaxPct:        strconv.FormatFloat(inv.Tax, 'f', -1, 64),
		TaxAmount:     service.FormatCents(inv.TaxAmountCents),
		Total:         service.FormatCents(inv.TotalCents),
	}
	var buf bytes.Buffer
	if err := invoiceTmpl.Execute(&buf, page); err != nil {
		log.WithError(err).WithField("invoice_id", inv.InvoiceID).Error("render invoice page")
		c.String(http.StatusInternalServerError, "failed to render invoice")
		return
	}
	c.Data(http.StatusOK, "text/html; charset=utf-8", buf.Bytes())
}
