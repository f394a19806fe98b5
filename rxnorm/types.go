package rxnorm

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Response shapes for the four RxNav endpoints. Only the fields the
// extraction reads are mapped.

type rxcuiResponse struct {
	IDGroup struct {
		RxNormID []string `json:"rxnormId"`
	} `json:"idGroup"`
}

type allRelatedResponse struct {
	AllRelatedGroup struct {
		ConceptGroup []conceptGroup `json:"conceptGroup"`
	} `json:"allRelatedGroup"`
}

type conceptGroup struct {
	TTY               string            `json:"tty"`
	ConceptProperties []conceptProperty `json:"conceptProperties"`
}

type conceptProperty struct {
	RxCUI string `json:"rxcui"`
	Name  string `json:"name"`
	TTY   string `json:"tty"`
}

type ndcsResponse struct {
	NDCGroup struct {
		NDCList struct {
			NDC []string `json:"ndc"`
		} `json:"ndcList"`
	} `json:"ndcGroup"`
}

type ndcPropertiesResponse struct {
	NDCPropertyGroup struct {
		NDCProperty ndcPropertyList `json:"ndcProperty"`
	} `json:"ndcPropertyGroup"`
}

type ndcProperty struct {
	Name string `json:"name"`
}

// ndcPropertyList normalizes the ndcProperty payload, which RxNav
// serves either as a single object or as a list of objects, into a
// slice in both cases.
type ndcPropertyList []ndcProperty

func (l *ndcPropertyList) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		*l = nil
		return nil
	}

	if trimmed[0] == '[' {
		var list []ndcProperty
		if err := json.Unmarshal(trimmed, &list); err != nil {
			return fmt.Errorf("failed to parse ndcProperty list: %w", err)
		}
		*l = list
		return nil
	}

	var single ndcProperty
	if err := json.Unmarshal(trimmed, &single); err != nil {
		return fmt.Errorf("failed to parse ndcProperty object: %w", err)
	}
	*l = ndcPropertyList{single}
	return nil
}
