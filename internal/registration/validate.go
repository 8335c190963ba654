package registration

import (
	"errors"
	"reflect"
	"regexp"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
)

var (
	emailPattern    = regexp.MustCompile(`(?i)^[A-Z0-9._%+-]+@[A-Z0-9.-]+\.[A-Z]{2,}$`)
	passwordCharset = regexp.MustCompile(`^[A-Za-z0-9@&#]{8,}$`)
	pincodePattern  = regexp.MustCompile(`^[0-9]{6}$`)
	mobilePattern   = regexp.MustCompile(`^[0-9]{10}$`)
	gstinPattern    = regexp.MustCompile(`^[0-9]{2}[A-Z]{5}[0-9]{4}[A-Z]{1}[1-9A-Z]{1}Z[0-9A-Z]{1}$`)
	panPattern      = regexp.MustCompile(`^[A-Z]{5}[0-9]{4}[A-Z]{1}$`)
)

// ValidationErrors maps form field names to the message shown next to them.
type ValidationErrors map[string]string

func (v ValidationErrors) Error() string {
	fields := make([]string, 0, len(v))
	for f := range v {
		fields = append(fields, f)
	}
	sort.Strings(fields)
	parts := make([]string, 0, len(fields))
	for _, f := range fields {
		parts = append(parts, f+": "+v[f])
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// messages holds the text per field and failing tag. Fields missing from
// the table fall back to defaultMessages.
var messages = map[string]map[string]string{
	"company_name":     {"required": "Company name is required", "min": "Minimum 2 characters required"},
	"password":         {"required": "Password is required", "min": "Minimum 8 characters required", "password": "Password must contain uppercase, lowercase, number, and special character (@, &, #)"},
	"email":            {"required": "Email is required"},
	"confirm_password": {"required": "Please confirm your password", "eqfield": "Passwords do not match"},

	"correspondence_address1": {"required": "Address 1 is required"},
	"correspondence_address2": {"required": "Address 2 is required"},
	"correspondence_country":  {"required": "Country is required"},
	"correspondence_state":    {"required": "State is required"},
	"correspondence_city":     {"required": "City is required"},
	"correspondence_pincode":  {"required": "Pincode is required", "pincode": "Invalid pincode (6 digits)"},
	"correspondence_phone":    {"required": "Phone is required"},
	"billing_company_name":    {"required": "Billing company name is required"},
	"billing_address1":        {"required": "Address 1 is required"},
	"billing_address2":        {"required": "Address 2 is required"},
	"billing_country":         {"required": "Country is required"},
	"billing_state":           {"required": "State is required"},
	"billing_pincode":         {"required": "Pincode is required"},
	"billing_phone":           {"required": "Phone is required"},
	"gstin":                   {"required": "GSTIN is required", "gstin": "Format (27ABCDE1234F2Z5)"},
	"pan":                     {"required": "PAN is required", "pan": "Format (ABCDE1234F)"},
	"gst_responsibility":      {"required": "You must accept GST responsibility"},

	"owner_name":                    {"required": "Owner name is required"},
	"owner_designation":             {"required": "Designation is required"},
	"contact_person_name":           {"required": "Contact person name is required"},
	"contact_person_designation":    {"required": "Designation is required"},
	"accountant_name":               {"required": "Accountant name is required"},
	"accountant_designation":        {"required": "Designation is required"},
	"exhibitor_profile":             {"min": "Select at least one category"},
	"company_profile":               {"required": "Company profile is required", "min": "Minimum 20 characters required"},
	"accept_terms":                  {"required": "You must accept the terms and conditions"},
	"authorized_person_name":        {"required": "Authorized person name is required"},
	"authorized_person_designation": {"required": "Designation is required"},
}

var defaultMessages = map[string]string{
	"required":          "This field is required",
	"expoemail":         "Invalid email address",
	"mobile":            "Invalid mobile number",
	"pincode":           "Invalid pincode",
	"indianstate":       "Select a valid state",
	"eq":                "Country must be INDIA",
	"exhibitorcategory": "Unknown exhibitor category",
	"gstin":             "Invalid GSTIN",
	"pan":               "Invalid PAN",
}

// Phones use the mobile tag but read "phone" on the address step.
var phoneFields = map[string]bool{"correspondence_phone": true, "billing_phone": true}

func messageFor(field, tag string) string {
	if phoneFields[field] && tag == "mobile" {
		return "Invalid phone number"
	}
	if m, ok := messages[field][tag]; ok {
		return m
	}
	if m, ok := defaultMessages[tag]; ok {
		return m
	}
	return "Invalid value"
}

// Validator wraps a configured validator instance.
type Validator struct {
	v *validator.Validate
}

func NewValidator() *Validator {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("form"), ",")
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})

	_ = v.RegisterValidation("expoemail", matches(emailPattern))
	_ = v.RegisterValidation("pincode", matches(pincodePattern))
	_ = v.RegisterValidation("mobile", matches(mobilePattern))
	_ = v.RegisterValidation("gstin", matches(gstinPattern))
	_ = v.RegisterValidation("pan", matches(panPattern))
	_ = v.RegisterValidation("password", func(fl validator.FieldLevel) bool {
		return StrongPassword(fl.Field().String())
	})
	_ = v.RegisterValidation("indianstate", func(fl validator.FieldLevel) bool {
		return contains(IndianStates, fl.Field().String())
	})
	_ = v.RegisterValidation("exhibitorcategory", func(fl validator.FieldLevel) bool {
		return contains(ExhibitorCategories, fl.Field().String())
	})

	v.RegisterStructValidation(billingRules, AddressDetails{})
	return &Validator{v: v}
}

func matches(re *regexp.Regexp) validator.Func {
	return func(fl validator.FieldLevel) bool {
		return re.MatchString(fl.Field().String())
	}
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}

// StrongPassword requires at least 8 characters from [A-Za-z0-9@&#] with
// one lowercase letter, one uppercase letter, one digit and one of @&#.
func StrongPassword(p string) bool {
	return passwordCharset.MatchString(p) &&
		strings.ContainsAny(p, "abcdefghijklmnopqrstuvwxyz") &&
		strings.ContainsAny(p, "ABCDEFGHIJKLMNOPQRSTUVWXYZ") &&
		strings.ContainsAny(p, "0123456789") &&
		strings.ContainsAny(p, "@&#")
}

// billingRules applies only when the billing address is entered separately.
func billingRules(sl validator.StructLevel) {
	a := sl.Current().Interface().(AddressDetails)
	if a.SameAsCorrespondence {
		return
	}

	required := []struct {
		value string
		field string
		name  string
	}{
		{a.BillingCompanyName, "billing_company_name", "BillingCompanyName"},
		{a.BillingAddress1, "billing_address1", "BillingAddress1"},
		{a.BillingAddress2, "billing_address2", "BillingAddress2"},
		{a.BillingCountry, "billing_country", "BillingCountry"},
		{a.BillingState, "billing_state", "BillingState"},
		{a.BillingPincode, "billing_pincode", "BillingPincode"},
		{a.BillingPhone, "billing_phone", "BillingPhone"},
		{a.GSTIN, "gstin", "GSTIN"},
		{a.PAN, "pan", "PAN"},
	}
	for _, r := range required {
		if strings.TrimSpace(r.value) == "" {
			sl.ReportError(r.value, r.field, r.name, "required", "")
		}
	}

	patterned := []struct {
		value string
		field string
		name  string
		tag   string
		re    *regexp.Regexp
	}{
		{a.BillingPincode, "billing_pincode", "BillingPincode", "pincode", pincodePattern},
		{a.BillingPhone, "billing_phone", "BillingPhone", "mobile", mobilePattern},
		{a.GSTIN, "gstin", "GSTIN", "gstin", gstinPattern},
		{a.PAN, "pan", "PAN", "pan", panPattern},
	}
	for _, p := range patterned {
		if strings.TrimSpace(p.value) != "" && !p.re.MatchString(p.value) {
			sl.ReportError(p.value, p.field, p.name, p.tag, "")
		}
	}

	if a.BillingState != "" && !contains(IndianStates, a.BillingState) {
		sl.ReportError(a.BillingState, "billing_state", "BillingState", "indianstate", "")
	}
	if !a.GSTResponsibility {
		sl.ReportError(a.GSTResponsibility, "gst_responsibility", "GSTResponsibility", "required", "")
	}
}

// Validate checks a step and returns ValidationErrors keyed by form field,
// keeping the first failure per field.
func (v *Validator) Validate(step any) error {
	err := v.v.Struct(step)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err
	}

	out := ValidationErrors{}
	for _, fe := range fieldErrs {
		field, _, _ := strings.Cut(fe.Field(), "[")
		if _, seen := out[field]; seen {
			continue
		}
		out[field] = messageFor(field, fe.Tag())
	}
	return out
}
