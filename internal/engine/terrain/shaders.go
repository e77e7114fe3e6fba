package terrain

// The vertex shader mirrors MorphOffset on the GPU: odd grid offsets
// collapse onto their even neighbor as the morph factor rises, so a fully
// morphed patch is vertex-exact with its parent level.
const terrainVertexShader = `#version 410 core
layout(location = 0) in vec2 aGrid;

uniform sampler2D uHeightMap;
uniform vec2  uFieldSize;
uniform vec2  uOffset;
uniform float uScale;
uniform float uHeightScale;
uniform vec3  uCameraPos;
uniform float uMorphStart;
uniform float uMorphEnd;
uniform mat4  uView;
uniform mat4  uProjection;

out vec3 vWorldPos;
out vec2 vUV;

float sampleHeight(vec2 worldXZ) {
    vec2 uv = (worldXZ + 0.5) / uFieldSize;
    return texture(uHeightMap, uv).r * uHeightScale;
}

vec2 morphGrid(vec2 grid, float morph) {
    vec2 frac = fract(grid * 0.5) * 2.0;
    return grid - frac * morph;
}

void main() {
    vec2 worldXZ = uOffset + aGrid * uScale;
    float height = sampleHeight(worldXZ);

    // Morph from the pre-morph vertex distance, matching the CPU-side
    // per-patch factor.
    float dist = distance(uCameraPos, vec3(worldXZ.x, height, worldXZ.y));
    float morph = clamp((dist - uMorphStart) / (uMorphEnd - uMorphStart), 0.0, 1.0);

    vec2 morphed = morphGrid(aGrid, morph);
    worldXZ = uOffset + morphed * uScale;
    height = sampleHeight(worldXZ);

    vWorldPos = vec3(worldXZ.x, height, worldXZ.y);
    vUV = (worldXZ + 0.5) / uFieldSize;

    gl_Position = uProjection * uView * vec4(vWorldPos, 1.0);
}
`

const terrainFragmentShader = `#version 410 core
in vec3 vWorldPos;
in vec2 vUV;

uniform sampler2D uHeightMap;
uniform vec2  uFieldSize;
uniform float uHeightScale;

uniform vec3 uSunDir;
uniform vec3 uAmbient;
uniform vec3 uDiffuse;

uniform int  uNumCascades;
uniform mat4 uShadowCP[4];
uniform sampler2DArrayShadow uShadowMap;

out vec4 fragColor;

vec3 terrainNormal() {
    vec2 texel = 1.0 / uFieldSize;
    float l = texture(uHeightMap, vUV - vec2(texel.x, 0.0)).r;
    float r = texture(uHeightMap, vUV + vec2(texel.x, 0.0)).r;
    float d = texture(uHeightMap, vUV - vec2(0.0, texel.y)).r;
    float u = texture(uHeightMap, vUV + vec2(0.0, texel.y)).r;
    return normalize(vec3((l - r) * uHeightScale, 2.0, (d - u) * uHeightScale));
}

float shadowFactor() {
    // Cascades are ordered finest first; the first one containing the
    // fragment wins.
    for (int i = 0; i < uNumCascades; i++) {
        vec4 sc = uShadowCP[i] * vec4(vWorldPos, 1.0);
        vec3 coords = sc.xyz / sc.w;
        if (all(greaterThanEqual(coords.xy, vec2(0.001))) &&
            all(lessThanEqual(coords.xy, vec2(0.999)))) {
            return texture(uShadowMap, vec4(coords.xy, float(i), coords.z - 0.0015));
        }
    }
    return 1.0;
}

void main() {
    vec3 normal = terrainNormal();
    float ndotl = max(dot(normal, normalize(uSunDir)), 0.0);
    float shadow = ndotl > 0.0 ? shadowFactor() : 1.0;

    // Grass on flats, rock on slopes.
    vec3 base = mix(vec3(0.45, 0.41, 0.38), vec3(0.23, 0.42, 0.18),
                    smoothstep(0.7, 0.95, normal.y));

    vec3 color = base * (uAmbient + uDiffuse * ndotl * shadow);
    fragColor = vec4(color, 1.0);
}
`

// The depth pass reuses the terrain vertex shader so shadow geometry
// morphs identically to the visible geometry.
const depthFragmentShader = `#version 410 core
void main() {}
`
