package validator

import (
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/google/go-containerregistry/pkg/name"

	"github.com/kpn-dsh/dsh-cli-sub001/internal/descriptor"
	"github.com/kpn-dsh/dsh-cli-sub001/internal/ids"
	"github.com/kpn-dsh/dsh-cli-sub001/internal/model"
	"github.com/kpn-dsh/dsh-cli-sub001/internal/template"
)

// DefaultProfileID is the profile id that is expected when a processor has
// more than one profile
const DefaultProfileID = "default"

// Validator validates processor configurations
type Validator struct {
	config *model.ProcessorConfig
}

// NewValidator creates a new validator
func NewValidator(config *model.ProcessorConfig) *Validator {
	return &Validator{config: config}
}

// ValidateProcessor runs all checks against config
func ValidateProcessor(config *model.ProcessorConfig) *ValidationResult {
	return NewValidator(config).Validate()
}

// Validate performs all validation checks
func (v *Validator) Validate() *ValidationResult {
	result := NewResult()

	v.validateIdentity(result)
	v.validateKind(result)
	v.validateJunctions(result, model.Inbound)
	v.validateJunctions(result, model.Outbound)
	v.validateJunctionDirections(result)
	v.validateParameters(result)
	v.validateBindings(result, v.prefix()+".environment-variables", v.config.EnvironmentVariables())
	v.validateProfiles(result)
	if v.config.Service != nil {
		v.validateImage(result)
		v.validatePorts(result)
	}

	result.Valid = len(result.Errors) == 0
	return result
}

func (v *Validator) prefix() string {
	if v.config.Kind == "" {
		return string(model.KindService)
	}
	return string(v.config.Kind)
}

func (v *Validator) validateIdentity(result *ValidationResult) {
	if v.config.ID.IsZero() {
		result.AddError("processor.id", "Processor id is required", "Add an id to the [processor] section")
	}
	if strings.TrimSpace(v.config.Label) == "" {
		result.AddError("processor.label", "Processor label is required", "Add a label to the [processor] section")
	}
}

func (v *Validator) validateKind(result *ValidationResult) {
	switch v.config.Kind {
	case model.KindService:
		if v.config.Service == nil {
			result.AddError("dsh-service", "Processor kind dsh-service requires a [dsh-service] section", "Add a [dsh-service] section with the image and profiles")
		}
		if v.config.App != nil {
			result.AddError("dsh-app", "A dsh-service processor cannot have a [dsh-app] section", "Remove the [dsh-app] section")
		}
	case model.KindApp:
		if v.config.App == nil {
			result.AddError("dsh-app", "Processor kind dsh-app requires a [dsh-app] section", "Add a [dsh-app] section with the manifest id and version")
			return
		}
		if v.config.Service != nil {
			result.AddError("dsh-service", "A dsh-app processor cannot have a [dsh-service] section", "Remove the [dsh-service] section")
		}
		if v.config.App.ManifestID == "" {
			result.AddError("dsh-app.manifest-id", "App catalog manifest id is required", "Set manifest-id to the app catalog manifest")
		}
		if v.config.App.ManifestVersion == "" {
			result.AddError("dsh-app.manifest-version", "App catalog manifest version is required", "Set manifest-version to a released version")
		}
	case "":
		result.AddError("processor.kind", "Processor kind is required", fmt.Sprintf("Set kind to one of %s", kindList()))
	default:
		result.AddError("processor.kind", fmt.Sprintf("Unknown processor kind '%s'", v.config.Kind), fmt.Sprintf("Set kind to one of %s", kindList()))
	}
}

func (v *Validator) validateJunctions(result *ValidationResult, direction model.Direction) {
	section := string(direction) + "-junctions"
	junctions := v.config.Junctions(direction)
	for _, id := range ids.SortedKeys(junctions) {
		junction := junctions[id]
		field := section + "." + id.String()

		min, max := junction.Cardinality.Bounds()
		if min < 0 || max < 0 {
			result.AddError(field, fmt.Sprintf("Junction '%s' has a negative cardinality bound", id), "Use bounds of zero or more")
		}
		if min > max {
			result.AddError(field, fmt.Sprintf("Junction '%s' has minimum %d greater than maximum %d", id, min, max), "Make min less than or equal to max")
		}
		if len(junction.AllowedResourceTypes) == 0 {
			result.AddError(field+".allowed-resource-types", fmt.Sprintf("Junction '%s' allows no resource types", id), fmt.Sprintf("Add one or more of %s", resourceTypeList()))
		}
		for _, rt := range junction.AllowedResourceTypes {
			if _, err := model.ParseResourceType(string(rt)); err != nil {
				result.AddError(field+".allowed-resource-types", fmt.Sprintf("Junction '%s' allows unknown resource type '%s'", id, rt), fmt.Sprintf("Use one of %s", resourceTypeList()))
			}
		}
	}
}

func (v *Validator) validateJunctionDirections(result *ValidationResult) {
	for _, id := range ids.SortedKeys(v.config.InboundJunctions) {
		if _, ok := v.config.OutboundJunctions[id]; ok {
			result.AddError("junctions", fmt.Sprintf("Junction '%s' is declared both inbound and outbound", id), "Use unique ids for inbound and outbound junctions")
		}
	}
}

func (v *Validator) validateParameters(result *ValidationResult) {
	seen := make(map[ids.ParameterID]bool)
	for i, p := range v.config.DeploymentParameters {
		field := fmt.Sprintf("deploy.parameters[%d]", i)
		if p.ID.IsZero() {
			result.AddError(field+".id", "Deployment parameter id is required", "Add an id to the parameter")
			continue
		}
		field = "deploy.parameters." + p.ID.String()
		if seen[p.ID] {
			result.AddError(field, fmt.Sprintf("Duplicate deployment parameter id '%s'", p.ID), "Use unique ids for each parameter")
		}
		seen[p.ID] = true

		if _, err := model.ParseDeploymentParameterType(string(p.Type)); err != nil {
			result.AddError(field+".type", fmt.Sprintf("Deployment parameter '%s' has unknown type '%s'", p.ID, p.Type), fmt.Sprintf("Use one of %s", parameterTypeList()))
		}
		if strings.TrimSpace(p.Label) == "" {
			result.AddError(field+".label", fmt.Sprintf("Deployment parameter '%s' has no label", p.ID), "Add a label to the parameter")
		}
		if p.Optional && p.Default == nil {
			result.AddError(field+".default", fmt.Sprintf("Optional deployment parameter '%s' has no default", p.ID), "Add a default value or make the parameter mandatory")
		}
		switch p.Type {
		case model.ParameterSelection:
			if len(p.Options) == 0 {
				result.AddError(field+".options", fmt.Sprintf("Selection parameter '%s' has no options", p.ID), "Add one or more options")
			}
			if p.Default != nil && !p.HasOption(*p.Default) {
				result.AddError(field+".default", fmt.Sprintf("Default '%s' of selection parameter '%s' is not an option", *p.Default, p.ID), "Use the id of one of the options as default")
			}
		case model.ParameterBoolean:
			if p.Default != nil && *p.Default != "true" && *p.Default != "false" {
				result.AddError(field+".default", fmt.Sprintf("Default '%s' of boolean parameter '%s' is not a boolean", *p.Default, p.ID), "Use \"true\" or \"false\"")
			}
		}
	}
}

func (v *Validator) validateBindings(result *ValidationResult, section string, bindings map[string]model.VariableBinding) {
	for _, env := range sortedNames(bindings) {
		binding := bindings[env]
		field := section + "." + env
		if !model.IsValidEnvName(env) {
			result.AddError(field, fmt.Sprintf("Invalid environment variable name '%s'", env), "Use letters, digits and underscores, not starting with a digit")
		}
		if v.config.Kind == model.KindApp && slices.Contains(descriptor.AppConfigKeys, env) {
			result.AddError(field, fmt.Sprintf("Environment variable '%s' is reserved for the profile", env), fmt.Sprintf("Rename the variable, %v are set from the profile", descriptor.AppConfigKeys))
		}

		switch binding.Type {
		case model.VariableInboundJunction, model.VariableOutboundJunction:
			if binding.RefID == "" {
				result.AddError(field+".id", fmt.Sprintf("Environment variable '%s' refers to no junction", env), "Set id to a junction id")
				continue
			}
			direction := model.Inbound
			if binding.Type == model.VariableOutboundJunction {
				direction = model.Outbound
			}
			id, err := ids.ParseJunctionID(binding.RefID)
			if err != nil {
				result.AddError(field+".id", err.Error(), "Set id to a junction id")
				continue
			}
			if _, ok := v.config.Junctions(direction)[id]; !ok {
				result.AddError(field+".id", fmt.Sprintf("Environment variable '%s' refers to undeclared %s junction '%s'", env, direction, id), fmt.Sprintf("Declare the junction in [%s-junctions]", direction))
			}
		case model.VariableDeploymentParameter:
			if binding.RefID == "" {
				result.AddError(field+".id", fmt.Sprintf("Environment variable '%s' refers to no deployment parameter", env), "Set id to a deployment parameter id")
				continue
			}
			id, err := ids.ParseParameterID(binding.RefID)
			if err != nil {
				result.AddError(field+".id", err.Error(), "Set id to a deployment parameter id")
				continue
			}
			if _, ok := v.config.Parameter(id); !ok {
				result.AddError(field+".id", fmt.Sprintf("Environment variable '%s' refers to undeclared deployment parameter '%s'", env, id), "Declare the parameter in [[deploy.parameters]]")
			}
		case model.VariableTemplate:
			if binding.Value == nil {
				result.AddError(field+".value", fmt.Sprintf("Template environment variable '%s' has no value", env), "Set value to the template")
				continue
			}
			if err := template.Validate(*binding.Value, template.All); err != nil {
				result.AddError(field+".value", err.Error(), fmt.Sprintf("Use only %s", placeholderList()))
			}
		case model.VariableValue:
			if binding.Value == nil {
				result.AddError(field+".value", fmt.Sprintf("Environment variable '%s' has no value", env), "Set value to the literal value")
			}
		default:
			result.AddError(field+".type", fmt.Sprintf("Environment variable '%s' has unknown type '%s'", env, binding.Type), fmt.Sprintf("Use one of %s", variableTypeList()))
		}
	}
}

func (v *Validator) validateProfiles(result *ValidationResult) {
	profiles := v.config.Profiles()
	section := v.prefix() + ".profiles"
	if v.config.Kind == model.KindService && v.config.Service != nil && len(profiles) == 0 {
		result.AddError(section, "At least one profile is required", "Add a [[dsh-service.profiles]] section")
	}

	seen := make(map[ids.ProfileID]bool)
	hasDefault := false
	for i, p := range profiles {
		field := fmt.Sprintf("%s[%d]", section, i)
		if p.ID.IsZero() {
			result.AddError(field+".id", "Profile id is required", "Add an id to the profile")
			continue
		}
		field = section + "." + p.ID.String()
		if seen[p.ID] {
			result.AddError(field, fmt.Sprintf("Duplicate profile id '%s'", p.ID), "Use unique ids for each profile")
		}
		seen[p.ID] = true
		if p.ID.String() == DefaultProfileID {
			hasDefault = true
		}
		if p.CPUs < model.MinimumCPUs {
			result.AddError(field+".cpus", fmt.Sprintf("Profile '%s' requests %g cpus", p.ID, p.CPUs), fmt.Sprintf("Request at least %g cpus", model.MinimumCPUs))
		}
		if p.Instances < 1 {
			result.AddError(field+".instances", fmt.Sprintf("Profile '%s' requests no instances", p.ID), "Request at least one instance")
		}
		if p.Mem == 0 {
			result.AddError(field+".mem", fmt.Sprintf("Profile '%s' requests no memory", p.ID), "Set mem to the memory in MiB")
		}
		v.validateBindings(result, field+".environment-variables", p.EnvironmentVariables)
	}

	if len(profiles) > 1 && !hasDefault {
		result.AddWarning(section, "Multiple profiles and none named 'default'", "Deployments will have to name a profile explicitly")
	}
}

// imageSample is substituted for placeholders to check the shape of an image template
const imageSample = "sample"

func (v *Validator) validateImage(result *ValidationResult) {
	image := v.config.Service.Image
	if image == "" {
		result.AddError("dsh-service.image", "Image is required", "Set image to a container image reference")
		return
	}
	if err := template.Validate(image, template.All); err != nil {
		result.AddError("dsh-service.image", err.Error(), fmt.Sprintf("Use only %s", placeholderList()))
		return
	}
	sample := image
	for _, n := range template.Names(image) {
		sample = strings.ReplaceAll(sample, "${"+n+"}", imageSample)
	}
	if _, err := name.ParseReference(sample); err != nil {
		result.AddError("dsh-service.image", fmt.Sprintf("Invalid image reference '%s': %v", image, err), "Use registry/repository:tag")
	}
}

func (v *Validator) validatePorts(result *ValidationResult) {
	svc := v.config.Service
	for _, port := range sortedNames(svc.ExposedPorts) {
		if n, err := strconv.Atoi(port); err != nil || !validPort(n) {
			result.AddError("dsh-service.exposed-ports."+port, fmt.Sprintf("Invalid exposed port '%s'", port), "Use a port number between 1 and 65535")
		}
	}
	if svc.HealthCheck != nil && !validPort(svc.HealthCheck.Port) {
		result.AddError("dsh-service.health-check.port", fmt.Sprintf("Invalid health check port %d", svc.HealthCheck.Port), "Use a port number between 1 and 65535")
	}
	if svc.Metrics != nil && !validPort(svc.Metrics.Port) {
		result.AddError("dsh-service.metrics.port", fmt.Sprintf("Invalid metrics port %d", svc.Metrics.Port), "Use a port number between 1 and 65535")
	}
	for i, secret := range svc.Secrets {
		if secret.Name == "" {
			result.AddError(fmt.Sprintf("dsh-service.secrets[%d].name", i), "Secret name is required", "Set name to a tenant secret")
		}
		for _, inj := range secret.Injections {
			if !model.IsValidEnvName(inj.Env) {
				result.AddError(fmt.Sprintf("dsh-service.secrets[%d].injections", i), fmt.Sprintf("Invalid injection environment variable '%s'", inj.Env), "Use letters, digits and underscores, not starting with a digit")
			}
		}
	}
}

func validPort(port int) bool {
	return port >= 1 && port <= 65535
}

func kindList() string {
	return joinQuoted(model.ProcessorKinds)
}

func resourceTypeList() string {
	return joinQuoted(model.ResourceTypes)
}

func parameterTypeList() string {
	return joinQuoted(model.ParameterTypes)
}

func variableTypeList() string {
	return joinQuoted(model.VariableTypes)
}

func placeholderList() string {
	names := make([]string, len(template.All))
	for i, p := range template.All {
		names[i] = "${" + string(p) + "}"
	}
	return strings.Join(names, ", ")
}

func joinQuoted[T ~string](values []T) string {
	quoted := make([]string, len(values))
	for i, v := range values {
		quoted[i] = "'" + string(v) + "'"
	}
	return strings.Join(quoted, ", ")
}
