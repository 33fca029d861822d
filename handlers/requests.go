package handlers

type credentialsRequest struct {
	Username string `json:"username" validate:"required,notblank,max=128"`
	Password string `json:"password" validate:"required,max=256"`
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

// vendorLoginRequest may be empty; the configured account is used then.
type vendorLoginRequest struct {
	Username string `json:"username" validate:"max=128"`
	Password string `json:"password" validate:"max=256"`
}

type selectorRequest struct {
	DeviceSelector string `json:"device_selector" validate:"selector"`
}

type playURLRequest struct {
	DeviceSelector string `json:"device_selector" validate:"selector"`
	URL            string `json:"url" validate:"required,url"`
	Type           int    `json:"type" validate:"omitempty,oneof=1 2"`
}

type volumeRequest struct {
	DeviceSelector string `json:"device_selector" validate:"selector"`
	Volume         *int   `json:"volume" validate:"required,min=0,max=100"`
}

type speakRequest struct {
	DeviceSelector string `json:"device_selector" validate:"selector"`
	Text           string `json:"text" validate:"required,notblank,max=1000"`
}
