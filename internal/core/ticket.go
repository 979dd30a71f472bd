package core

import (
	"regexp"
	"strings"
)

// TicketData holds the fields pulled out of a repair-ticket document.
// Any field the document (or the recognition pass) did not yield is empty.
type TicketData struct {
	TransactionNumber  string
	TicketNumber       string
	BranchReference    string
	Date               string
	InvoiceNumber      string
	PurchaseDate       string
	ProductCode        string
	ProductDescription string
	Serial             string
	Brand              string
	Model              string
	WarrantyType       string
}

// Ticket field patterns. Tolerant of the spacing and diacritic drift the
// recognition pass introduces.
var (
	reTransaction = regexp.MustCompile(`(?i)No\.?\s*Transacci[oó]n:?\s*(\S+)`)
	reTicket      = regexp.MustCompile(`(?i)No\.?\s*Boleta:?\s*(\S+)`)
	reDate        = regexp.MustCompile(`(?i)Fecha:?\s*(\d{2}[/-]\d{2}[/-]\d{4})`)
	reInvoice     = regexp.MustCompile(`(?i)No\.?\s*Factura:?\s*([^\n]+?)(?:\s*Fecha\s+de\s+Compra|$)`)
	rePurchase    = regexp.MustCompile(`(?i)Fecha\s+de\s+Compra:?\s*(\d{2}[/-]\d{2}[/-]\d{4})`)
	reProductCode = regexp.MustCompile(`(?i)C[óo]digo:?\s*(\d+)`)
	reProductDesc = regexp.MustCompile(`(?i)C[óo]digo:?\s*\d+\s+([A-ZÁ-Ú\s]+?)\s+Serie`)
	reSerial      = regexp.MustCompile(`(?i)Serie:?\s*(\S+)`)
	reBrand       = regexp.MustCompile(`(?i)Marca:?\s*(\S+)`)
	reModel       = regexp.MustCompile(`(?i)Modelo:?\s*([^\n]+)`)
	reWarranty    = regexp.MustCompile(`(?i)Garant[íi]a:?\s*([^\n]+)`)
)

// ParseTicket extracts repair-ticket fields from document text. Missing
// fields stay empty; parsing never fails.
func ParseTicket(text string) *TicketData {
	data := &TicketData{}

	data.TransactionNumber = firstGroup(reTransaction, text)
	data.TicketNumber = firstGroup(reTicket, text)
	if data.TicketNumber != "" {
		data.BranchReference = branchReference(data.TicketNumber)
	}
	data.Date = firstGroup(reDate, text)
	data.InvoiceNumber = firstGroup(reInvoice, text)
	data.PurchaseDate = strings.ReplaceAll(firstGroup(rePurchase, text), "-", "/")
	data.ProductCode = firstGroup(reProductCode, text)
	data.ProductDescription = firstGroup(reProductDesc, text)
	data.Serial = firstGroup(reSerial, text)
	data.Brand = firstGroup(reBrand, text)
	data.Model = firstGroup(reModel, text)
	data.WarrantyType = firstGroup(reWarranty, text)

	return data
}

// branchReference derives the 3-digit branch code from a ticket number
// like "41-123456" -> "041".
func branchReference(ticket string) string {
	ref := strings.SplitN(ticket, "-", 2)[0]
	for len(ref) < 3 {
		ref = "0" + ref
	}
	return ref
}

func firstGroup(re *regexp.Regexp, text string) string {
	m := re.FindStringSubmatch(text)
	if len(m) < 2 {
		return ""
	}
	return strings.TrimSpace(m[1])
}
