package deepface

// RepresentRequest for POST /represent
type RepresentRequest struct {
	Img      string `json:"img"`      // base64 encoded image
	Model    string `json:"model"`    // "Facenet512", "ArcFace", etc
	Detector string `json:"detector"` // "ssd", "retinaface", etc
}

// RepresentResponse from POST /represent
type RepresentResponse struct {
	Results []RepresentResult `json:"results"`
}

type RepresentResult struct {
	Embedding  []float64  `json:"embedding"`
	FacialArea FacialArea `json:"facial_area"`
}

type FacialArea struct {
	X int `json:"x"`
	Y int `json:"y"`
	W int `json:"w"`
	H int `json:"h"`
}
