package extractor

import "fmt"

// BuildPrompt returns the instruction text sent alongside a page image.
// pageContext reads like "page 2 of 3" so the model knows a partial page
// may legitimately lack some fields.
func BuildPrompt(pageContext string) string {
	return fmt.Sprintf(`You are looking at %s of an invoice document.

Extract the following fields from this page and respond with ONLY a JSON object, no other text:

{
  "invoice_number": "the invoice number or reference, or null if not visible on this page",
  "invoice_date": "the invoice issue date as written, or null",
  "vendor_name": "the name of the company issuing the invoice, or null",
  "total_amount": the total amount due as a number without currency symbols, or null,
  "due_date": "the payment due date as written, or null",
  "currency": "the three-letter currency code (e.g. USD, EUR), or null"
}

Use null for any field not visible on this page. Do not guess or invent values.`, pageContext)
}
