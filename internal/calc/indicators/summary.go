package indicators

import (
	"encoding/json"
	"fmt"

	"Envolvente/internal/diag"
	"Envolvente/internal/model"
)

type Input struct {
	Model model.Model `json:"model"`
	// Optional. q_sol;jul is only computed when present.
	IrradianceJul Irradiance `json:"irradiance_jul,omitempty"`
}

// UnmarshalJSON starts from DefaultMeta so that absent meta fields keep
// their defaults.
func (in *Input) UnmarshalJSON(data []byte) error {
	type plain Input
	p := plain{Model: model.Model{Meta: model.DefaultMeta()}}
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	*in = Input(p)
	return nil
}

type Summary struct {
	Name         string         `json:"name"`
	Climate      string         `json:"climate"`
	ARef         float64        `json:"a_ref"`
	VolEnvGross  float64        `json:"vol_env_gross"`
	VolEnvNet    float64        `json:"vol_env_net"`
	VolEnvInhNet float64        `json:"vol_env_inh_net"`
	Compacity    float64        `json:"compacity"`
	K            KDetail        `json:"k"`
	N50Default   N50Detail      `json:"n50_he2019"`
	N50          float64        `json:"n50"`
	CoDefault    float64        `json:"c_o_he2019"`
	Co           float64        `json:"c_o"`
	QSolJul      *float64       `json:"q_soljul,omitempty"`
	Warnings     []diag.Warning `json:"warnings"`
	Notes        string         `json:"notes"`
}

// Summarize evaluates every indicator of m. rad may be nil.
func Summarize(m *model.Model, rad Irradiance, obs diag.Observer) Summary {
	col := &diag.Collector{}
	c := New(m, diag.Tee(col, obs))
	s := Summary{
		Name:         m.Meta.Name,
		Climate:      m.Meta.Climate,
		ARef:         m.ARef(),
		VolEnvGross:  m.VolEnvGross(),
		VolEnvNet:    m.VolEnvNet(),
		VolEnvInhNet: m.VolEnvInhNet(),
		Compacity:    c.Compacity(),
		K:            c.K(),
		N50Default:   c.N50Default(),
		N50:          c.N50(),
		CoDefault:    c.CoDefault(),
		Co:           c.Co(),
	}
	if rad != nil {
		q := c.QSolJul(rad)
		s.QSolJul = &q
	}
	s.Warnings = col.Only(diag.LevelWarning)
	s.Notes = "DB-HE 2019 indicators"
	if m.Meta.N50TestACH != nil {
		s.Notes += fmt.Sprintf(", n50 from test %.2f 1/h", *m.Meta.N50TestACH)
	}
	return s
}

func Calculate(in Input, obs diag.Observer) (Summary, error) {
	if len(in.Model.Spaces) == 0 {
		return Summary{}, fmt.Errorf("invalid input: model without spaces")
	}
	return Summarize(model.Build(in.Model), in.IrradianceJul, obs), nil
}
