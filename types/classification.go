package types

// Conditions is the fixed, ordered set of chest X-ray finding categories
// scored by the classifier. The order matches the model's output layer and
// the inference log's column order.
var Conditions = []string{
	"Enlarged Cardiomediastinum",
	"Cardiomegaly",
	"Lung Opacity",
	"Lung Lesion",
	"Edema",
	"Consolidation",
	"Pneumonia",
	"Atelectasis",
	"Pneumothorax",
	"Pleural Effusion",
	"Pleural Other",
	"Fracture",
	"Support Devices",
}

// ConditionScore is the per-condition classifier output. Label is "Y" when
// Probability meets the threshold, "N" otherwise. Conditions are scored
// independently; more than one may be "Y".
type ConditionScore struct {
	Probability float64 `json:"probability"`
	Label       string  `json:"label"`
}

// ClassificationResult is the outcome of one inference call.
type ClassificationResult struct {
	// AnalyzedFile is the base name of the image the model actually ran on,
	// after vague-reference resolution.
	AnalyzedFile string `json:"analyzed_file"`

	// Results maps each condition name to its score. Iterate via Conditions
	// for a stable order.
	Results map[string]ConditionScore `json:"results"`
}
