// Package testutil provides test utilities and fixtures for unit tests.
package testutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/erraggy/oasmerge/tree"
)

// End-to-end fixture: a schema fragment where AuthError points at Error, and a
// route fragment whose 400 response points at AuthError from another file.
const (
	EndToEndSchemas = `Error:
  type: object
AuthError:
  $ref: "#/Error"
`
	EndToEndRoutes = `/login:
  responses:
    "400":
      $ref: "schemas.yaml#/AuthError"
`
)

// MustParse parses YAML or JSON source into a tree, failing the test on error.
func MustParse(t testing.TB, src string) tree.Node {
	t.Helper()

	n, err := tree.Parse(t.Name(), []byte(src))
	if err != nil {
		t.Fatalf("Failed to parse fixture: %v", err)
	}
	return n
}

// MustMapping parses source whose top level is a mapping.
func MustMapping(t testing.TB, src string) *tree.Mapping {
	t.Helper()

	m, ok := MustParse(t, src).(*tree.Mapping)
	if !ok {
		t.Fatalf("Fixture top level is not a mapping")
	}
	return m
}

// Fragments parses every file of files into a tree keyed by fragment name.
// The result converts directly to loader.MapLoader.
func Fragments(t testing.TB, files map[string]string) map[string]tree.Node {
	t.Helper()

	out := make(map[string]tree.Node, len(files))
	for name, src := range files {
		n, err := tree.Parse(name, []byte(src))
		if err != nil {
			t.Fatalf("Failed to parse fixture %s: %v", name, err)
		}
		out[name] = n
	}
	return out
}

// WriteFragments writes files below a fresh temporary directory and returns it.
func WriteFragments(t *testing.T, files map[string]string) string {
	t.Helper()

	dir := t.TempDir()
	for name, src := range files {
		p := filepath.Join(dir, filepath.FromSlash(name))
		if err := os.MkdirAll(filepath.Dir(p), 0o750); err != nil {
			t.Fatalf("Failed to create fixture directory: %v", err)
		}
		if err := os.WriteFile(p, []byte(src), 0o600); err != nil {
			t.Fatalf("Failed to write fixture %s: %v", name, err)
		}
	}
	return dir
}

// VaultHubFiles returns a fragment tree in the layout of the default
// configuration: six schema fragments and six route fragments.
func VaultHubFiles() map[string]string {
	return map[string]string{
		"schemas/common.yaml": `Error:
  type: object
  required: [code, message]
  properties:
    code:
      type: integer
    message:
      type: string
SuccessResponse:
  type: object
  properties:
    success:
      type: boolean
`,
		"schemas/auth.yaml": `LoginRequest:
  type: object
  required: [email, password]
  properties:
    email:
      type: string
      format: email
    password:
      type: string
LoginResponse:
  type: object
  properties:
    token:
      type: string
    user:
      $ref: "./user.yaml#/User"
SignupRequest:
  type: object
  properties:
    email:
      type: string
    password:
      type: string
AuthError:
  $ref: "#/Error"
`,
		"schemas/user.yaml": `User:
  type: object
  properties:
    id:
      type: integer
      format: int64
    email:
      type: string
    createdAt:
      type: string
      format: date-time
`,
		"schemas/vault.yaml": `Vault:
  type: object
  properties:
    uniqueId:
      type: string
    name:
      type: string
    value:
      type: string
VaultLite:
  type: object
  properties:
    uniqueId:
      type: string
    name:
      type: string
CreateVaultRequest:
  type: object
  required: [name, value]
  properties:
    name:
      type: string
    value:
      type: string
`,
		"schemas/audit.yaml": `AuditLog:
  type: object
  properties:
    id:
      type: integer
    action:
      type: string
    vault:
      $ref: "./vault.yaml#/VaultLite"
`,
		"schemas/api-key.yaml": `ApiKey:
  type: object
  properties:
    id:
      type: integer
    name:
      type: string
    vaults:
      type: array
      items:
        $ref: "#/components/schemas/VaultLite"
`,
		"paths/health.yaml": `health:
  get:
    operationId: health
    responses:
      "200":
        description: OK
        content:
          application/json:
            schema:
              $ref: "../schemas/common.yaml#/SuccessResponse"
`,
		"paths/auth.yaml": `login:
  post:
    operationId: login
    requestBody:
      content:
        application/json:
          schema:
            $ref: "../schemas/auth.yaml#/LoginRequest"
    responses:
      "200":
        content:
          application/json:
            schema:
              $ref: "../schemas/auth.yaml#/LoginResponse"
      "400":
        content:
          application/json:
            schema:
              $ref: "../schemas/auth.yaml#/AuthError"
signup:
  post:
    operationId: signup
    requestBody:
      content:
        application/json:
          schema:
            $ref: "../schemas/auth.yaml#/SignupRequest"
    responses:
      "201":
        description: Created
logout:
  post:
    operationId: logout
    responses:
      "204":
        description: No Content
`,
		"paths/user.yaml": `getCurrentUser:
  get:
    operationId: getCurrentUser
    responses:
      "200":
        content:
          application/json:
            schema:
              $ref: "../schemas/user.yaml#/User"
`,
		"paths/vault.yaml": `vaults:
  get:
    operationId: getVaults
    responses:
      "200":
        content:
          application/json:
            schema:
              type: array
              items:
                $ref: "../schemas/vault.yaml#/VaultLite"
  post:
    operationId: createVault
    requestBody:
      content:
        application/json:
          schema:
            $ref: "../schemas/vault.yaml#/CreateVaultRequest"
vault:
  get:
    operationId: getVault
    parameters:
      - name: uniqueId
        in: path
        required: true
        schema:
          type: string
    responses:
      "200":
        content:
          application/json:
            schema:
              $ref: "../schemas/vault.yaml#/Vault"
`,
		"paths/audit.yaml": `auditLogs:
  get:
    operationId: getAuditLogs
    responses:
      "200":
        content:
          application/json:
            schema:
              type: array
              items:
                $ref: "../schemas/audit.yaml#/AuditLog"
`,
		"paths/api-key.yaml": `apiKeys:
  get:
    operationId: getAPIKeys
    responses:
      "200":
        content:
          application/json:
            schema:
              type: array
              items:
                $ref: "../schemas/api-key.yaml#/ApiKey"
apiKey:
  delete:
    operationId: deleteAPIKey
    responses:
      "204":
        description: Deleted
`,
	}
}
