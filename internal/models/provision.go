package models

// WifiNetwork is one access point reported by a device's AP-mode /scan.
type WifiNetwork struct {
	SSID   string `json:"ssid"`
	RSSI   int    `json:"rssi"`
	Secure bool   `json:"secure"`
}

// ProvisionRequest is the AP-mode handshake payload that hands a device its
// home Wi-Fi credentials and identity.
type ProvisionRequest struct {
	SSID     string `json:"ssid"`
	Password string `json:"password"`
	Hostname string `json:"hostname"`
	UID      string `json:"uid"`
	FeederID int    `json:"feederId"`
}

// ProvisionResult is the device's response. Older firmware omits everything
// past Message, so all fields are optional on the wire.
type ProvisionResult struct {
	Success  bool   `json:"success"`
	Message  string `json:"message"`
	DeviceID string `json:"deviceId"`
	FeederID int    `json:"feederId"`
	CameraIP string `json:"cameraIp"`
	FeederIP string `json:"feederIp"`
}
