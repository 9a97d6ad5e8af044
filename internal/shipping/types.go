package shipping

// RateRequest names the two postal codes a quote is requested for.
type RateRequest struct {
	OriginPostalCode      string `json:"from_zip"`
	DestinationPostalCode string `json:"to_zip"`
}

// Parcel dimensions in kilograms and centimeters.
type Parcel struct {
	Weight float64 `json:"weight"`
	Length float64 `json:"length"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// DefaultParcel is quoted for every request: 1 kg, 10×10×5 cm.
var DefaultParcel = Parcel{Weight: 1, Length: 10, Width: 10, Height: 5}

// quotationRequest is the carrier wire body.
type quotationRequest struct {
	ZipFrom string `json:"zip_from"`
	ZipTo   string `json:"zip_to"`
	Parcel  Parcel `json:"parcel"`
}
