package registration

import "strings"

// DefaultCountry is the only country the exhibition accepts.
const DefaultCountry = "INDIA"

var IndianStates = []string{
	"MAHARASHTRA",
	"DELHI",
	"KARNATAKA",
	"TAMIL NADU",
	"GUJARAT",
	"RAJASTHAN",
	"UTTAR PRADESH",
	"WEST BENGAL",
	"KERALA",
	"PUNJAB",
}

var ExhibitorCategories = []string{
	"Cables and Wires",
	"Accessories for Wiring",
	"Electrical Safety Equipments",
	"Stabilizers & UPS",
	"Switches and Switchgear",
	"Electrical Panels",
	"Lighting Solutions",
	"Energy Meters",
	"Transformers",
	"Generators",
	"Batteries",
	"Solar Products",
	"Motors and Drives",
	"Test and Measurement Equipment",
	"Automation Systems",
}

// LoginDetails is step 1 of the wizard.
type LoginDetails struct {
	CompanyName     string `json:"company_name" form:"company_name" validate:"required,min=2"`
	Email           string `json:"email" form:"email" validate:"required,expoemail"`
	Password        string `json:"password" form:"password" validate:"required,min=8,password"`
	ConfirmPassword string `json:"confirm_password" form:"confirm_password" validate:"required,eqfield=Password"`
}

// AddressDetails is step 2. Billing fields are checked at struct level
// because they only apply when the billing address differs.
type AddressDetails struct {
	CorrespondenceAddress1       string `json:"correspondence_address1" form:"correspondence_address1" validate:"required"`
	CorrespondenceAddress2       string `json:"correspondence_address2" form:"correspondence_address2" validate:"required"`
	CorrespondenceAddress3       string `json:"correspondence_address3" form:"correspondence_address3"`
	CorrespondenceCountry        string `json:"correspondence_country" form:"correspondence_country" validate:"required,eq=INDIA"`
	CorrespondenceState          string `json:"correspondence_state" form:"correspondence_state" validate:"required,indianstate"`
	CorrespondenceCity           string `json:"correspondence_city" form:"correspondence_city" validate:"required"`
	CorrespondencePincode        string `json:"correspondence_pincode" form:"correspondence_pincode" validate:"required,pincode"`
	CorrespondencePhone          string `json:"correspondence_phone" form:"correspondence_phone" validate:"required,mobile"`
	CorrespondenceAlternatePhone string `json:"correspondence_alternate_phone" form:"correspondence_alternate_phone"`
	CorrespondenceWebsite        string `json:"correspondence_website" form:"correspondence_website"`

	SameAsCorrespondence bool `json:"same_as_correspondence" form:"same_as_correspondence"`

	BillingCompanyName    string `json:"billing_company_name" form:"billing_company_name"`
	BillingAddress1       string `json:"billing_address1" form:"billing_address1"`
	BillingAddress2       string `json:"billing_address2" form:"billing_address2"`
	BillingAddress3       string `json:"billing_address3" form:"billing_address3"`
	BillingCountry        string `json:"billing_country" form:"billing_country"`
	BillingState          string `json:"billing_state" form:"billing_state"`
	BillingCity           string `json:"billing_city" form:"billing_city"`
	BillingPincode        string `json:"billing_pincode" form:"billing_pincode"`
	BillingPhone          string `json:"billing_phone" form:"billing_phone"`
	BillingAlternatePhone string `json:"billing_alternate_phone" form:"billing_alternate_phone"`
	GSTIN                 string `json:"gstin" form:"gstin"`
	PAN                   string `json:"pan" form:"pan"`
	GSTResponsibility     bool   `json:"gst_responsibility" form:"gst_responsibility"`
}

// MirrorBilling copies the correspondence address into the billing fields
// when the two are declared the same.
func (a *AddressDetails) MirrorBilling() {
	if !a.SameAsCorrespondence {
		return
	}
	a.BillingAddress1 = a.CorrespondenceAddress1
	a.BillingAddress2 = a.CorrespondenceAddress2
	a.BillingAddress3 = a.CorrespondenceAddress3
	a.BillingCountry = a.CorrespondenceCountry
	a.BillingState = a.CorrespondenceState
	a.BillingCity = a.CorrespondenceCity
	a.BillingPincode = a.CorrespondencePincode
	a.BillingPhone = a.CorrespondencePhone
	a.BillingAlternatePhone = a.CorrespondenceAlternatePhone
}

// ContactDetails is step 3.
type ContactDetails struct {
	OwnerName        string `json:"owner_name" form:"owner_name" validate:"required"`
	OwnerEmail       string `json:"owner_email" form:"owner_email" validate:"required,expoemail"`
	OwnerDesignation string `json:"owner_designation" form:"owner_designation" validate:"required"`
	OwnerMobile      string `json:"owner_mobile" form:"owner_mobile" validate:"required,mobile"`

	ContactPersonName        string `json:"contact_person_name" form:"contact_person_name" validate:"required"`
	ContactPersonEmail       string `json:"contact_person_email" form:"contact_person_email" validate:"required,expoemail"`
	ContactPersonDesignation string `json:"contact_person_designation" form:"contact_person_designation" validate:"required"`
	ContactPersonMobile      string `json:"contact_person_mobile" form:"contact_person_mobile" validate:"required,mobile"`

	AccountantName        string `json:"accountant_name" form:"accountant_name" validate:"required"`
	AccountantEmail       string `json:"accountant_email" form:"accountant_email" validate:"required,expoemail"`
	AccountantDesignation string `json:"accountant_designation" form:"accountant_designation" validate:"required"`
	AccountantMobile      string `json:"accountant_mobile" form:"accountant_mobile" validate:"required,mobile"`

	OverseasPrincipals          string   `json:"overseas_principals" form:"overseas_principals"`
	ExhibitorProfile            []string `json:"exhibitor_profile" form:"exhibitor_profile" validate:"min=1,dive,exhibitorcategory"`
	CompanyProfile              string   `json:"company_profile" form:"company_profile" validate:"required,min=20"`
	ReferredBy                  string   `json:"referred_by" form:"referred_by"`
	AuthorizedPersonName        string   `json:"authorized_person_name" form:"authorized_person_name" validate:"required"`
	AuthorizedPersonDesignation string   `json:"authorized_person_designation" form:"authorized_person_designation" validate:"required"`
	AcceptTerms                 bool     `json:"accept_terms" form:"accept_terms" validate:"required"`
}

const (
	CopyToContactPerson = "contact_person"
	CopyToAccountant    = "accountant"
)

// CopyOwnerTo fills the contact person or accountant name and email from the
// owner. Unknown targets are ignored.
func (c *ContactDetails) CopyOwnerTo(target string) {
	switch target {
	case CopyToContactPerson:
		c.ContactPersonName = c.OwnerName
		c.ContactPersonEmail = c.OwnerEmail
	case CopyToAccountant:
		c.AccountantName = c.OwnerName
		c.AccountantEmail = c.OwnerEmail
	}
}

// Payload is the body sent upstream; mobiles carry the 91 country prefix.
func (c ContactDetails) Payload() ContactDetails {
	c.OwnerMobile = "91" + c.OwnerMobile
	c.ContactPersonMobile = "91" + c.ContactPersonMobile
	c.AccountantMobile = "91" + c.AccountantMobile
	c.ExhibitorProfile = append([]string(nil), c.ExhibitorProfile...)
	return c
}

// HasCategory is used by the form template to keep checkboxes ticked.
func (c ContactDetails) HasCategory(category string) bool {
	for _, v := range c.ExhibitorProfile {
		if v == category {
			return true
		}
	}
	return false
}

// Draft accumulates everything entered so far. Each step owns its own
// section, so submitting a later step never clears an earlier one.
type Draft struct {
	State     State          `json:"state"`
	CompanyID string         `json:"company_id,omitempty"`
	Login     LoginDetails   `json:"login_details"`
	Address   AddressDetails `json:"address"`
	Contacts  ContactDetails `json:"contacts"`
}

func NewDraft() Draft {
	return Draft{
		State: StateLoginDetails,
		Address: AddressDetails{
			CorrespondenceCountry: DefaultCountry,
			BillingCountry:        DefaultCountry,
			SameAsCorrespondence:  true,
		},
	}
}

// LoginEmail is prefilled on the login page after registration.
func (d Draft) LoginEmail() string {
	if email := strings.TrimSpace(d.Contacts.OwnerEmail); email != "" {
		return email
	}
	return d.Login.Email
}
