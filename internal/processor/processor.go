// Package processor runs the lifecycle of processor deployments: it resolves
// a deployment request into a descriptor and creates, inspects and deletes
// the deployment through the platform API.
package processor

import (
	"go.uber.org/zap"

	"github.com/kpn-dsh/dsh-cli-sub001/internal/ids"
	"github.com/kpn-dsh/dsh-cli-sub001/internal/model"
	"github.com/kpn-dsh/dsh-cli-sub001/internal/platform"
	"github.com/kpn-dsh/dsh-cli-sub001/internal/resource"
	"github.com/kpn-dsh/dsh-cli-sub001/internal/storage"
	"github.com/kpn-dsh/dsh-cli-sub001/internal/template"
)

// Realization is a processor type that can be deployed in pipelines
type Realization struct {
	Config *model.ProcessorConfig
}

// NewRealization returns the realization of a loaded configuration
func NewRealization(config *model.ProcessorConfig) *Realization {
	return &Realization{Config: config}
}

// Dependencies are the collaborators shared by the instances of a target
type Dependencies struct {
	API       platform.API
	Registry  resource.Registry
	Mapping   template.Mapping
	User      string
	Separator string
	Logger    *zap.Logger
	History   storage.DeploymentStore
}

// Instance returns the instance of the processor in a pipeline
func (r *Realization) Instance(pipeline ids.PipelineID, deps Dependencies) *Instance {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	inst := &Instance{
		Pipeline:    pipeline,
		Realization: r,
		API:         deps.API,
		Registry:    deps.Registry,
		Mapping:     deps.Mapping,
		User:        deps.User,
		Separator:   deps.Separator,
		History:     deps.History,
	}
	inst.Logger = logger.With(zap.String("deployment", inst.DeploymentName()))
	return inst
}

// Instance is a processor deployed, or to be deployed, in one pipeline
type Instance struct {
	Pipeline    ids.PipelineID
	Realization *Realization
	API         platform.API
	Registry    resource.Registry
	Mapping     template.Mapping
	User        string
	Separator   string
	Logger      *zap.Logger
	History     storage.DeploymentStore
}

// DeploymentName is the platform name of the deployment, "<pipeline>-<processor>"
func (i *Instance) DeploymentName() string {
	return DeploymentName(i.Pipeline, i.Realization.Config.ID)
}

// DeploymentName returns the platform name of a processor in a pipeline
func DeploymentName(pipeline ids.PipelineID, processor ids.ProcessorID) string {
	return pipeline.String() + "-" + processor.String()
}

// Kind returns the processor kind of the instance
func (i *Instance) Kind() model.ProcessorKind {
	return i.Realization.Config.Kind
}
