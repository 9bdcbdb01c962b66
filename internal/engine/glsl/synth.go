package glsl

import (
	"fmt"
	"strconv"
	"strings"
)

// Uniform, attribute and array names shared by synthesis and binding.
const (
	UniformModel      = "model"
	UniformView       = "view"
	UniformProjection = "projection"
	UniformViewPos    = "viewPos"
	UniformMaterial   = "material"

	DirLightArray   = "dirLights"
	PointLightArray = "pointLights"
	SpotLightArray  = "spotLights"

	DefaultOutColour = "FragColour"

	texCoordsIn   = "aTexCoords"
	texCoordsPass = "TexCoords"
)

// Vertex attribute locations.
const (
	LocPosition  = 0
	LocNormal    = 1
	LocTexCoords = 2
	LocTangent   = 3
	LocBitangent = 4
)

// SamplerName returns the sampler uniform for the i-th (1-based) texture of a role.
func SamplerName(desc string, i int) string {
	return desc + strconv.Itoa(i)
}

// UniformName returns the uniform for a field of element i of a light array.
func UniformName(array string, i int, field string) string {
	return array + "[" + strconv.Itoa(i) + "]." + field
}

// MaterialField returns the uniform for a material field.
func MaterialField(field string) string {
	return UniformMaterial + "." + field
}

// RoleCount is the number of textures tagged with one role description.
type RoleCount struct {
	Desc  string
	Count int
}

// LightCounts sizes the light arrays. Spot includes flash lights.
type LightCounts struct {
	Dir   int
	Point int
	Spot  int
}

// Total returns the number of lights across categories.
func (c LightCounts) Total() int {
	return c.Dir + c.Point + c.Spot
}

// VertexOptions controls vertex synthesis.
type VertexOptions struct {
	Version     string
	UseTextures bool
}

// FragmentOptions controls fragment synthesis.
type FragmentOptions struct {
	Version string
	// OutColour names the output variable; DefaultOutColour when empty.
	OutColour   string
	UseTextures bool
	// Roles lists textures per role in the order samplers are declared.
	Roles []RoleCount
	// DiffuseDesc and SpecularDesc pick the roles sampled for lighting.
	DiffuseDesc  string
	SpecularDesc string
	Lights       LightCounts
}

// Vertex builds the vertex stage. Texture coordinates are only declared and
// passed through when the mesh has textures.
func Vertex(opts VertexOptions) *Source {
	s := &Source{Version: opts.Version}
	s.Add(
		Attribute(LocPosition, "vec3", "aPos"),
		Attribute(LocNormal, "vec3", "aNormal"),
	)
	if opts.UseTextures {
		s.Add(Attribute(LocTexCoords, "vec2", texCoordsIn))
	}
	s.Add(
		Out("vec3", "FragPos"),
		Out("vec3", "Normal"),
	)
	if opts.UseTextures {
		s.Add(Out("vec2", texCoordsPass))
	}
	s.Add(
		Uniform("mat4", UniformModel),
		Uniform("mat4", UniformView),
		Uniform("mat4", UniformProjection),
	)

	s.Body(
		"FragPos = vec3(model * vec4(aPos, 1.0));",
		"Normal = mat3(transpose(inverse(model))) * aNormal;",
	)
	if opts.UseTextures {
		s.Body(texCoordsPass + " = " + texCoordsIn + ";")
	}
	s.Body("gl_Position = projection * view * vec4(FragPos, 1.0);")
	return s
}

// lightCategory describes how one light kind is declared and accumulated.
type lightCategory struct {
	structName string
	macro      string
	array      string
	fn         string
	params     string
	args       string
	fields     []string
	body       func(terms materialTerms) []string
}

var (
	dirCategory = lightCategory{
		structName: "DirLight",
		macro:      "NR_DIR_LIGHTS",
		array:      DirLightArray,
		fn:         "CalcDirLight",
		params:     "DirLight light, vec3 normal, vec3 viewDir",
		args:       "norm, viewDir",
		fields: []string{
			"vec3 direction",
			"vec3 ambient",
			"vec3 diffuse",
			"vec3 specular",
		},
		body: func(t materialTerms) []string {
			return []string{
				"vec3 lightDir = normalize(-light.direction);",
				"float diff = max(dot(normal, lightDir), 0.0);",
				"vec3 reflectDir = reflect(-lightDir, normal);",
				"float spec = pow(max(dot(viewDir, reflectDir), 0.0), material.shininess);",
				"vec3 ambient = light.ambient * " + t.ambient + ";",
				"vec3 diffuse = light.diffuse * diff * " + t.diffuse + ";",
				"vec3 specular = light.specular * spec * " + t.specular + ";",
				"return ambient + diffuse + specular;",
			}
		},
	}

	pointCategory = lightCategory{
		structName: "PointLight",
		macro:      "NR_POINT_LIGHTS",
		array:      PointLightArray,
		fn:         "CalcPointLight",
		params:     "PointLight light, vec3 normal, vec3 fragPos, vec3 viewDir",
		args:       "norm, FragPos, viewDir",
		fields: []string{
			"vec3 position",
			"float constant",
			"float linear",
			"float quadratic",
			"vec3 ambient",
			"vec3 diffuse",
			"vec3 specular",
		},
		body: func(t materialTerms) []string {
			return []string{
				"vec3 lightDir = normalize(light.position - fragPos);",
				"float diff = max(dot(normal, lightDir), 0.0);",
				"vec3 reflectDir = reflect(-lightDir, normal);",
				"float spec = pow(max(dot(viewDir, reflectDir), 0.0), material.shininess);",
				"float distance = length(light.position - fragPos);",
				"float attenuation = 1.0 / (light.constant + light.linear * distance + light.quadratic * (distance * distance));",
				"vec3 ambient = light.ambient * " + t.ambient + ";",
				"vec3 diffuse = light.diffuse * diff * " + t.diffuse + ";",
				"vec3 specular = light.specular * spec * " + t.specular + ";",
				"return (ambient + diffuse + specular) * attenuation;",
			}
		},
	}

	spotCategory = lightCategory{
		structName: "SpotLight",
		macro:      "NR_SPOT_LIGHTS",
		array:      SpotLightArray,
		fn:         "CalcSpotLight",
		params:     "SpotLight light, vec3 normal, vec3 fragPos, vec3 viewDir",
		args:       "norm, FragPos, viewDir",
		fields: []string{
			"vec3 position",
			"vec3 direction",
			"float cutOff",
			"float outerCutOff",
			"float constant",
			"float linear",
			"float quadratic",
			"vec3 ambient",
			"vec3 diffuse",
			"vec3 specular",
		},
		body: func(t materialTerms) []string {
			return []string{
				"vec3 lightDir = normalize(light.position - fragPos);",
				"float diff = max(dot(normal, lightDir), 0.0);",
				"vec3 reflectDir = reflect(-lightDir, normal);",
				"float spec = pow(max(dot(viewDir, reflectDir), 0.0), material.shininess);",
				"float distance = length(light.position - fragPos);",
				"float attenuation = 1.0 / (light.constant + light.linear * distance + light.quadratic * (distance * distance));",
				"float theta = dot(lightDir, normalize(-light.direction));",
				"float epsilon = light.cutOff - light.outerCutOff;",
				"float intensity = clamp((theta - light.outerCutOff) / epsilon, 0.0, 1.0);",
				"vec3 ambient = light.ambient * " + t.ambient + ";",
				"vec3 diffuse = light.diffuse * diff * " + t.diffuse + ";",
				"vec3 specular = light.specular * spec * " + t.specular + ";",
				"return ambient * attenuation + (diffuse + specular) * attenuation * intensity;",
			}
		},
	}
)

// materialTerms are the colour expressions used by every light function.
type materialTerms struct {
	ambient  string
	diffuse  string
	specular string
}

func mixWith(field, sampler string) string {
	return fmt.Sprintf("mix(%s, texture(%s, %s).rgb, %s)",
		MaterialField(field), sampler, texCoordsPass, MaterialField(field+"Mix"))
}

// terms picks, per colour, either the bare material constant or a mix with the
// first sampler of the matching role. Ambient always stays the bare constant;
// material.ambientMix is declared and set but not sampled yet.
func terms(opts FragmentOptions) materialTerms {
	t := materialTerms{
		ambient:  MaterialField("ambient"),
		diffuse:  MaterialField("diffuse"),
		specular: MaterialField("specular"),
	}
	if !opts.UseTextures {
		return t
	}
	for _, r := range opts.Roles {
		if r.Count <= 0 {
			continue
		}
		switch r.Desc {
		case opts.DiffuseDesc:
			t.diffuse = mixWith("diffuse", SamplerName(r.Desc, 1))
		case opts.SpecularDesc:
			t.specular = mixWith("specular", SamplerName(r.Desc, 1))
		}
	}
	return t
}

// Fragment builds the fragment stage. Declarations are emitted in this order:
// the material, one block per non-empty light category, samplers per role,
// then main and the light functions.
func Fragment(opts FragmentOptions) *Source {
	out := opts.OutColour
	if out == "" {
		out = DefaultOutColour
	}

	s := &Source{Version: opts.Version}
	s.Add(Struct("Material",
		"vec3 ambient",
		"vec3 diffuse",
		"vec3 specular",
		"float shininess",
		"float ambientMix",
		"float diffuseMix",
		"float specularMix",
	))
	s.Add(Out("vec4", out))
	s.Add(In("vec3", "FragPos"), In("vec3", "Normal"))
	if opts.UseTextures {
		s.Add(In("vec2", texCoordsPass))
	}
	s.Add(
		Uniform("vec3", UniformViewPos),
		Uniform("Material", UniformMaterial),
	)

	s.Body(
		"vec3 norm = normalize(Normal);",
		"vec3 viewDir = normalize(viewPos - FragPos);",
		"vec3 result = vec3(0.0);",
	)

	t := terms(opts)
	for _, c := range []struct {
		cat   lightCategory
		count int
	}{
		{dirCategory, opts.Lights.Dir},
		{pointCategory, opts.Lights.Point},
		{spotCategory, opts.Lights.Spot},
	} {
		if c.count <= 0 {
			continue
		}
		cat := c.cat
		s.Add(
			Struct(cat.structName, cat.fields...),
			Define(cat.macro, c.count),
			UniformArray(cat.structName, cat.array, cat.macro),
			Prototype("vec3", cat.fn, cat.params),
		)
		s.Body(
			"for (int i = 0; i < "+cat.macro+"; i++)",
			"    result += "+cat.fn+"("+cat.array+"[i], "+cat.args+");",
		)
		s.Funcs = append(s.Funcs, Func{
			Signature: "vec3 " + cat.fn + "(" + cat.params + ")",
			Body:      cat.body(t),
		})
	}

	if opts.UseTextures {
		for _, r := range opts.Roles {
			for i := 1; i <= r.Count; i++ {
				s.Add(Uniform("sampler2D", SamplerName(r.Desc, i)))
			}
		}
	}

	s.Body(out + " = vec4(result, 1.0);")
	return s
}

// LightFields lists the struct fields of each light array, in declaration order.
func LightFields(array string) []string {
	var cat lightCategory
	switch array {
	case DirLightArray:
		cat = dirCategory
	case PointLightArray:
		cat = pointCategory
	case SpotLightArray:
		cat = spotCategory
	default:
		return nil
	}
	names := make([]string, len(cat.fields))
	for i, f := range cat.fields {
		names[i] = f[strings.LastIndexByte(f, ' ')+1:]
	}
	return names
}
