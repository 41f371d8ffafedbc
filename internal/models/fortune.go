package models

// Fortune tiers, ordered from greatest blessing down to the curse tier.
// The model is instructed to answer with one of these exact labels.
const (
	TierDaikichi = "DAIKICHI (Great Blessing)"
	TierUkichi   = "UKICHI (Blessing)"
	TierKichi    = "KICHI (Good Fortune)"
	TierShokichi = "SHOKICHI (Small Blessing)"
	TierSuekichi = "SUEKICHI (Future Blessing)"
	TierKyo      = "KYO (Curse)"
)

// FortuneTiers lists every accepted tier label.
var FortuneTiers = []string{
	TierDaikichi, TierUkichi, TierKichi, TierShokichi, TierSuekichi, TierKyo,
}

// Waka is the fortune's poem: original Japanese text plus an English interpretation.
type Waka struct {
	Text    string `json:"text"`
	Meaning string `json:"meaning"`
}

// Advice holds the ten named guidance fields of a traditional omikuji slip.
type Advice struct {
	Wish          string `json:"wish"`
	Love          string `json:"love"`
	WaitingPerson string `json:"waiting_person"`
	Business      string `json:"business"`
	Studies       string `json:"studies"`
	Health        string `json:"health"`
	Housing       string `json:"housing"`
	Travel        string `json:"travel"`
	Proposal      string `json:"proposal"`
	LostItem      string `json:"lost_item"`
}

// FortuneResult is the fixed schema the generator must produce.
type FortuneResult struct {
	Fortune   string `json:"fortune"`
	GodName   string `json:"god_name"`
	Waka      Waka   `json:"waka"`
	Advice    Advice `json:"advice"`
	LuckyItem string `json:"lucky_item"`
}
