// internal/models/business.go
package models

// Business is the registered entity an application is filed for.
type Business struct {
	ID                string        `json:"id"`
	BusinessName      string        `json:"businessName"`
	BusinessType      string        `json:"businessType"`
	ProposedTradeName string        `json:"proposedTradeName,omitempty"`
	NatureOfBusiness  string        `json:"natureOfBusiness,omitempty"`
	BusinessAddress   string        `json:"businessAddress,omitempty"`
	TypeMeta          *BusinessType `json:"typeMeta,omitempty"`
}

// BusinessType is the reference row describing a registrable business type.
type BusinessType struct {
	ID                      string  `json:"id"`
	Type                    string  `json:"type"`
	DisplayName             string  `json:"displayName"`
	Description             string  `json:"description,omitempty"`
	EstimatedProcessingDays int     `json:"estimatedProcessingDays,omitempty"`
	BaseFee                 float64 `json:"baseFee,omitempty"`
}

// UserProfile is the applicant's account profile.
type UserProfile struct {
	ID              string `json:"id"`
	FullName        string `json:"fullName"`
	Email           string `json:"email"`
	Phone           string `json:"phone,omitempty"`
	NIC             string `json:"nic,omitempty"`
	Address         string `json:"address,omitempty"`
	ProfileImageURL string `json:"profileImageUrl,omitempty"`
	IsEmailVerified bool   `json:"isEmailVerified"`
	IsPhoneVerified bool   `json:"isPhoneVerified"`
	IsNICVerified   bool   `json:"isNicVerified"`
}
