package models

import (
	"database/sql"
	"fmt"
)

type KYCLevel string

const (
	// KYCLevel1 is the default, unverified level.
	KYCLevel1 KYCLevel = "LEVEL_1"

	// KYCPending means a document was submitted and awaits review.
	KYCPending KYCLevel = "PENDING"

	// KYCLevel2 is the single approved terminal level.
	KYCLevel2 KYCLevel = "LEVEL_2"

	// KYCRejected means the latest submission was declined. The user may resubmit.
	KYCRejected KYCLevel = "REJECTED"
)

func ParseKYCLevel(s string) (KYCLevel, error) {
	switch l := KYCLevel(s); l {
	case KYCLevel1, KYCPending, KYCLevel2, KYCRejected:
		return l, nil
	}
	return "", fmt.Errorf("unknown kyc level %q", s)
}

// CanSubmit reports whether a new document may be submitted from this level.
func (l KYCLevel) CanSubmit() bool {
	return l == KYCLevel1 || l == KYCRejected
}

type DocumentType string

const (
	DocumentPassport       DocumentType = "passport"
	DocumentNationalID     DocumentType = "national_id"
	DocumentDriversLicense DocumentType = "drivers_license"
)

func ParseDocumentType(s string) (DocumentType, error) {
	switch d := DocumentType(s); d {
	case DocumentPassport, DocumentNationalID, DocumentDriversLicense:
		return d, nil
	}
	return "", fmt.Errorf("unknown document type %q", s)
}

// KYCData is embedded in the users row and is only populated once a
// document has been submitted.
type KYCData struct {
	DocumentType    sql.NullString `db:"kyc_document_type"`
	DocumentURL     sql.NullString `db:"kyc_document_url"`
	SubmittedAt     sql.NullTime   `db:"kyc_submitted_at"`
	RejectionReason sql.NullString `db:"kyc_rejection_reason"`
}
