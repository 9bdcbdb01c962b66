package glsl

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func roles(diffuse, specular, normal, height int) []RoleCount {
	return []RoleCount{
		{Desc: "texture_diffuse", Count: diffuse},
		{Desc: "texture_specular", Count: specular},
		{Desc: "texture_normal", Count: normal},
		{Desc: "texture_height", Count: height},
	}
}

func fragOpts(useTextures bool, r []RoleCount, lights LightCounts) FragmentOptions {
	return FragmentOptions{
		UseTextures:  useTextures,
		Roles:        r,
		DiffuseDesc:  "texture_diffuse",
		SpecularDesc: "texture_specular",
		Lights:       lights,
	}
}

func TestFragmentSamplersFollowRoleCounts(t *testing.T) {
	src := Fragment(fragOpts(true, roles(2, 1, 0, 0), LightCounts{Point: 1}))

	assert.Equal(t, []string{"texture_diffuse1", "texture_diffuse2", "texture_specular1"}, src.Samplers())

	text := src.String()
	assert.Contains(t, text, "uniform sampler2D texture_diffuse1;")
	assert.Contains(t, text, "uniform sampler2D texture_diffuse2;")
	assert.Contains(t, text, "uniform sampler2D texture_specular1;")
	assert.NotContains(t, text, "texture_normal")
	assert.Contains(t, text, "mix(material.diffuse, texture(texture_diffuse1, TexCoords).rgb, material.diffuseMix)")
	assert.Contains(t, text, "mix(material.specular, texture(texture_specular1, TexCoords).rgb, material.specularMix)")
	assert.Contains(t, text, "in vec2 TexCoords;")
}

func TestAmbientStaysMaterialConstant(t *testing.T) {
	text := Fragment(fragOpts(true, roles(1, 0, 0, 0), LightCounts{Dir: 1, Point: 1, Spot: 1})).String()

	assert.Equal(t, 3, strings.Count(text, "vec3 ambient = light.ambient * material.ambient;"))
	assert.NotContains(t, text, "material.ambientMix)")
	assert.Contains(t, text, "float ambientMix;", "the mix factor stays in the material struct")
}

func TestFragmentWithoutTexturesHasNoMix(t *testing.T) {
	src := Fragment(fragOpts(false, nil, LightCounts{Dir: 1, Point: 2}))
	text := src.String()

	assert.NotContains(t, text, "mix(")
	assert.NotContains(t, text, "sampler2D")
	assert.NotContains(t, text, "TexCoords")
	assert.Contains(t, text, "vec3 diffuse = light.diffuse * diff * material.diffuse;")
	assert.Empty(t, src.Samplers())
}

func TestFragmentRolesIgnoredWithoutTextures(t *testing.T) {
	src := Fragment(fragOpts(false, roles(1, 1, 0, 0), LightCounts{Point: 1}))
	assert.Empty(t, src.Samplers())
	assert.NotContains(t, src.String(), "mix(")
}

func TestFragmentOnlySpecularTexture(t *testing.T) {
	text := Fragment(fragOpts(true, roles(0, 1, 0, 0), LightCounts{Point: 1})).String()

	assert.Contains(t, text, "vec3 diffuse = light.diffuse * diff * material.diffuse;")
	assert.Contains(t, text, "texture(texture_specular1")
	assert.NotContains(t, text, "texture_diffuse1")
}

func TestFragmentLightCategories(t *testing.T) {
	tests := []struct {
		name    string
		lights  LightCounts
		present []string
		absent  []string
	}{
		{
			name:    "none",
			lights:  LightCounts{},
			absent:  []string{"NR_DIR_LIGHTS", "NR_POINT_LIGHTS", "NR_SPOT_LIGHTS", "CalcDirLight"},
			present: []string{"vec3 result = vec3(0.0);"},
		},
		{
			name:   "point only",
			lights: LightCounts{Point: 3},
			present: []string{
				"#define NR_POINT_LIGHTS 3",
				"uniform PointLight pointLights[NR_POINT_LIGHTS];",
				"vec3 CalcPointLight(PointLight light, vec3 normal, vec3 fragPos, vec3 viewDir);",
				"result += CalcPointLight(pointLights[i], norm, FragPos, viewDir);",
			},
			absent: []string{"NR_DIR_LIGHTS", "NR_SPOT_LIGHTS"},
		},
		{
			name:   "all",
			lights: LightCounts{Dir: 1, Point: 2, Spot: 3},
			present: []string{
				"#define NR_DIR_LIGHTS 1",
				"#define NR_POINT_LIGHTS 2",
				"#define NR_SPOT_LIGHTS 3",
				"uniform SpotLight spotLights[NR_SPOT_LIGHTS];",
				"result += CalcDirLight(dirLights[i], norm, viewDir);",
			},
			absent: []string{"flashLights"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			text := Fragment(fragOpts(false, nil, tt.lights)).String()
			for _, p := range tt.present {
				assert.Contains(t, text, p)
			}
			for _, a := range tt.absent {
				assert.NotContains(t, text, a)
			}
		})
	}
}

func TestFragmentDeclarationOrder(t *testing.T) {
	src := Fragment(fragOpts(true, roles(1, 0, 0, 0), LightCounts{Dir: 1, Spot: 1}))

	var kinds []string
	for _, d := range src.Decls {
		if d.Kind == DeclStruct || d.Kind == DeclDefine || d.Kind == DeclPrototype || d.Type == "sampler2D" {
			kinds = append(kinds, d.Kind.String()+":"+d.Name)
		}
	}
	assert.Equal(t, []string{
		"struct:Material",
		"struct:DirLight", "define:NR_DIR_LIGHTS", "prototype:CalcDirLight",
		"struct:SpotLight", "define:NR_SPOT_LIGHTS", "prototype:CalcSpotLight",
		"uniform:texture_diffuse1",
	}, kinds)

	text := src.String()
	mainAt := strings.Index(text, "void main()")
	require.Positive(t, mainAt)
	assert.Less(t, strings.Index(text, "uniform sampler2D texture_diffuse1;"), mainAt)
	assert.Greater(t, strings.Index(text, "vec3 CalcSpotLight(SpotLight light, vec3 normal, vec3 fragPos, vec3 viewDir) {"), mainAt)
	assert.True(t, strings.HasSuffix(strings.TrimSpace(text), "}"))
}

func TestFragmentOutColour(t *testing.T) {
	text := Fragment(fragOpts(false, nil, LightCounts{})).String()
	assert.Contains(t, text, "out vec4 FragColour;")
	assert.Contains(t, text, "FragColour = vec4(result, 1.0);")

	opts := fragOpts(false, nil, LightCounts{})
	opts.OutColour = "outColour"
	text = Fragment(opts).String()
	assert.Contains(t, text, "out vec4 outColour;")
	assert.NotContains(t, text, "FragColour")
}

func TestVertexTextureCoords(t *testing.T) {
	with := Vertex(VertexOptions{UseTextures: true}).String()
	without := Vertex(VertexOptions{}).String()

	assert.Contains(t, with, "layout (location = 2) in vec2 aTexCoords;")
	assert.Contains(t, with, "TexCoords = aTexCoords;")
	assert.NotContains(t, without, "TexCoords")

	for _, text := range []string{with, without} {
		assert.True(t, strings.HasPrefix(text, DefaultVersion+"\n"))
		assert.Contains(t, text, "layout (location = 0) in vec3 aPos;")
		assert.Contains(t, text, "layout (location = 1) in vec3 aNormal;")
		assert.Contains(t, text, "uniform mat4 model;")
		assert.Contains(t, text, "uniform mat4 view;")
		assert.Contains(t, text, "uniform mat4 projection;")
	}
}

func TestSynthesisIsDeterministic(t *testing.T) {
	opts := fragOpts(true, roles(2, 1, 1, 1), LightCounts{Dir: 1, Point: 4, Spot: 2})
	assert.Equal(t, Fragment(opts).String(), Fragment(opts).String())
}

func TestNames(t *testing.T) {
	assert.Equal(t, "texture_diffuse3", SamplerName("texture_diffuse", 3))
	assert.Equal(t, "pointLights[2].quadratic", UniformName(PointLightArray, 2, "quadratic"))
	assert.Equal(t, "material.shininess", MaterialField("shininess"))
	assert.Equal(t, []string{"direction", "ambient", "diffuse", "specular"}, LightFields(DirLightArray))
	assert.Equal(t, []string{"position", "direction", "cutOff", "outerCutOff", "constant", "linear", "quadratic", "ambient", "diffuse", "specular"}, LightFields(SpotLightArray))
	assert.Nil(t, LightFields("flashLights"))
}

func TestDeclRendering(t *testing.T) {
	assert.Equal(t, "#define N 4", Define("N", 4).String())
	assert.Equal(t, "in vec3 Normal;", In("vec3", "Normal").String())
	assert.Equal(t, "uniform Light lights[N];", UniformArray("Light", "lights", "N").String())
	assert.Equal(t, "struct S {\n    float x;\n};", Struct("S", "float x").String())

	src := &Source{Version: "#version 330 core"}
	src.Add(Uniform("float", "a"), Uniform("float", "b"))
	src.Body("gl_FragColor = vec4(a);")
	d, ok := src.Lookup(DeclUniform, "b")
	require.True(t, ok)
	assert.Equal(t, "float", d.Type)
	assert.Equal(t, []string{"a", "b"}, src.Names(DeclUniform))
	assert.Equal(t, "#version 330 core\n\nuniform float a;\nuniform float b;\n\nvoid main() {\n    gl_FragColor = vec4(a);\n}\n", src.String())
}
