// Package admission implements the pod mutating webhook that stamps a note id into
// every container of labelled pods.
package admission

import "encoding/json"

const (
	reviewAPIVersion = "admission.k8s.io/v1"
	reviewKind       = "AdmissionReview"
	patchTypeJSON    = "JSONPatch"
)

type Review struct {
	APIVersion string    `json:"apiVersion"`
	Kind       string    `json:"kind"`
	Request    *Request  `json:"request,omitempty"`
	Response   *Response `json:"response,omitempty"`
}

type Request struct {
	UID       string          `json:"uid"`
	Namespace string          `json:"namespace,omitempty"`
	Object    json.RawMessage `json:"object,omitempty"`
}

type Response struct {
	UID       string  `json:"uid"`
	Allowed   bool    `json:"allowed"`
	Patch     []byte  `json:"patch,omitempty"`
	PatchType *string `json:"patchType,omitempty"`
}

type pod struct {
	Metadata struct {
		Name   string            `json:"name"`
		Labels map[string]string `json:"labels"`
	} `json:"metadata"`
	Spec struct {
		Containers []container `json:"containers"`
	} `json:"spec"`
}

type container struct {
	Name string          `json:"name"`
	Env  json.RawMessage `json:"env"`
}

func (c container) hasEnv() bool {
	return len(c.Env) > 0 && string(c.Env) != "null"
}

type envVar struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

type patchOp struct {
	Op    string      `json:"op"`
	Path  string      `json:"path"`
	Value interface{} `json:"value"`
}
