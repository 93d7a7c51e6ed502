package admission

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"
)

const (
	DefaultLabel   = "ghostkube.io/service"
	DefaultEnvName = "GHOST_NOTE_ID"
)

type IDGenerator interface {
	NewID() string
}

type uuidGenerator struct{}

func (uuidGenerator) NewID() string {
	return uuid.NewString()
}

type Option func(*Mutator)

func WithLabel(label string) Option {
	return func(m *Mutator) {
		if label != "" {
			m.label = label
		}
	}
}

func WithEnvName(name string) Option {
	return func(m *Mutator) {
		if name != "" {
			m.envName = name
		}
	}
}

func withIDGenerator(g IDGenerator) Option {
	return func(m *Mutator) { m.ids = g }
}

type Mutator struct {
	label   string
	envName string
	ids     IDGenerator
}

func NewMutator(opts ...Option) *Mutator {
	m := &Mutator{label: DefaultLabel, envName: DefaultEnvName, ids: uuidGenerator{}}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Review answers an AdmissionReview. Pods without the label are allowed untouched;
// labelled pods get "<label value>:<id>" added to the env of every container, one id per pod.
func (m *Mutator) Review(ctx context.Context, in *Review) (*Review, error) {
	if in == nil || in.Request == nil {
		return nil, fmt.Errorf("admission review has no request")
	}
	out := &Review{
		APIVersion: reviewAPIVersion,
		Kind:       reviewKind,
		Response:   &Response{UID: in.Request.UID, Allowed: true},
	}
	var p pod
	if len(in.Request.Object) > 0 {
		if err := json.Unmarshal(in.Request.Object, &p); err != nil {
			return nil, fmt.Errorf("decode pod: %w", err)
		}
	}
	service := p.Metadata.Labels[m.label]
	if service == "" {
		return out, nil
	}

	noteID := service + ":" + m.ids.NewID()
	ops := m.patch(p.Spec.Containers, envVar{Name: m.envName, Value: noteID})
	raw, err := json.Marshal(ops)
	if err != nil {
		return nil, fmt.Errorf("encode patch: %w", err)
	}
	patchType := patchTypeJSON
	out.Response.Patch = raw
	out.Response.PatchType = &patchType

	logutil.GetLogger(ctx).Info("pod mutated",
		zap.String("pod", p.Metadata.Name),
		zap.String("namespace", in.Request.Namespace),
		zap.String("service", service),
		zap.String("note_id", noteID),
		zap.Int("containers", len(p.Spec.Containers)))
	return out, nil
}

func (m *Mutator) patch(containers []container, env envVar) []patchOp {
	ops := make([]patchOp, 0, len(containers))
	for i, c := range containers {
		if c.hasEnv() {
			ops = append(ops, patchOp{Op: "add", Path: fmt.Sprintf("/spec/containers/%d/env/-", i), Value: env})
			continue
		}
		ops = append(ops, patchOp{Op: "add", Path: fmt.Sprintf("/spec/containers/%d/env", i), Value: []envVar{env}})
	}
	return ops
}
