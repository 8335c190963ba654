package registration

import (
	"net/url"
	"strings"
)

func checked(values url.Values, key string) bool {
	switch strings.ToLower(values.Get(key)) {
	case "on", "true", "1", "yes":
		return true
	}
	return false
}

func text(values url.Values, key string) string {
	return strings.TrimSpace(values.Get(key))
}

func LoginDetailsFromForm(values url.Values) LoginDetails {
	return LoginDetails{
		CompanyName:     text(values, "company_name"),
		Email:           text(values, "email"),
		Password:        values.Get("password"),
		ConfirmPassword: values.Get("confirm_password"),
	}
}

func AddressDetailsFromForm(values url.Values) AddressDetails {
	a := AddressDetails{
		CorrespondenceAddress1:       text(values, "correspondence_address1"),
		CorrespondenceAddress2:       text(values, "correspondence_address2"),
		CorrespondenceAddress3:       text(values, "correspondence_address3"),
		CorrespondenceCountry:        text(values, "correspondence_country"),
		CorrespondenceState:          text(values, "correspondence_state"),
		CorrespondenceCity:           text(values, "correspondence_city"),
		CorrespondencePincode:        text(values, "correspondence_pincode"),
		CorrespondencePhone:          text(values, "correspondence_phone"),
		CorrespondenceAlternatePhone: text(values, "correspondence_alternate_phone"),
		CorrespondenceWebsite:        text(values, "correspondence_website"),
		SameAsCorrespondence:         checked(values, "same_as_correspondence"),
		BillingCompanyName:           text(values, "billing_company_name"),
		BillingAddress1:              text(values, "billing_address1"),
		BillingAddress2:              text(values, "billing_address2"),
		BillingAddress3:              text(values, "billing_address3"),
		BillingCountry:               text(values, "billing_country"),
		BillingState:                 text(values, "billing_state"),
		BillingCity:                  text(values, "billing_city"),
		BillingPincode:               text(values, "billing_pincode"),
		BillingPhone:                 text(values, "billing_phone"),
		BillingAlternatePhone:        text(values, "billing_alternate_phone"),
		GSTIN:                        strings.ToUpper(text(values, "gstin")),
		PAN:                          strings.ToUpper(text(values, "pan")),
		GSTResponsibility:            checked(values, "gst_responsibility"),
	}
	if a.CorrespondenceCountry == "" {
		a.CorrespondenceCountry = DefaultCountry
	}
	if a.BillingCountry == "" {
		a.BillingCountry = DefaultCountry
	}
	return a
}

func ContactDetailsFromForm(values url.Values) ContactDetails {
	var profile []string
	for _, v := range values["exhibitor_profile"] {
		if v = strings.TrimSpace(v); v != "" {
			profile = append(profile, v)
		}
	}
	return ContactDetails{
		OwnerName:                   text(values, "owner_name"),
		OwnerEmail:                  text(values, "owner_email"),
		OwnerDesignation:            text(values, "owner_designation"),
		OwnerMobile:                 text(values, "owner_mobile"),
		ContactPersonName:           text(values, "contact_person_name"),
		ContactPersonEmail:          text(values, "contact_person_email"),
		ContactPersonDesignation:    text(values, "contact_person_designation"),
		ContactPersonMobile:         text(values, "contact_person_mobile"),
		AccountantName:              text(values, "accountant_name"),
		AccountantEmail:             text(values, "accountant_email"),
		AccountantDesignation:       text(values, "accountant_designation"),
		AccountantMobile:            text(values, "accountant_mobile"),
		OverseasPrincipals:          text(values, "overseas_principals"),
		ExhibitorProfile:            profile,
		CompanyProfile:              text(values, "company_profile"),
		ReferredBy:                  text(values, "referred_by"),
		AuthorizedPersonName:        text(values, "authorized_person_name"),
		AuthorizedPersonDesignation: text(values, "authorized_person_designation"),
		AcceptTerms:                 checked(values, "accept_terms"),
	}
}
