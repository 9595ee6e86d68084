package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var applyCmd = &cobra.Command{
	Use:   "apply",
	Short: "Apply a resource manifest to a running instance",
	Long: `Apply a YAML manifest describing a System, Host, Volume, or Setting
against a running arraysim instance's HTTP control plane.

Examples:
  # Apply a volume definition
  arraysim apply -f volume.yaml

  # Apply against a specific instance
  arraysim apply -f settings.yaml --instance localhost:5001`,
	RunE: runApply,
}

func init() {
	applyCmd.Flags().StringP("file", "f", "", "YAML manifest to apply (required)")
	applyCmd.Flags().String("instance", "localhost:5000", "Instance control plane address")
	_ = applyCmd.MarkFlagRequired("file")

	rootCmd.AddCommand(applyCmd)
}

// arrayResource is a generic manifest envelope: Kind picks the control-plane
// route, Spec is decoded into that resource's own request shape.
type arrayResource struct {
	APIVersion string                 `yaml:"apiVersion"`
	Kind       string                 `yaml:"kind"`
	Metadata   resourceMetadata       `yaml:"metadata"`
	Spec       map[string]interface{} `yaml:"spec"`
}

type resourceMetadata struct {
	Name string `yaml:"name"`
}

func runApply(cmd *cobra.Command, args []string) error {
	filename, _ := cmd.Flags().GetString("file")
	instance, _ := cmd.Flags().GetString("instance")

	data, err := os.ReadFile(filename)
	if err != nil {
		return fmt.Errorf("failed to read file: %w", err)
	}

	var resource arrayResource
	if err := yaml.Unmarshal(data, &resource); err != nil {
		return fmt.Errorf("failed to parse YAML: %w", err)
	}

	c := &applyClient{base: "http://" + instance, http: &http.Client{Timeout: 10 * time.Second}}

	switch resource.Kind {
	case "System":
		return applySystem(c, &resource)
	case "Host":
		return applyHost(c, &resource)
	case "Volume":
		return applyVolume(c, &resource)
	case "Setting":
		return applySetting(c, &resource)
	default:
		return fmt.Errorf("unsupported resource kind: %s", resource.Kind)
	}
}

type applyClient struct {
	base string
	http *http.Client
}

func (c *applyClient) post(path string, body interface{}) (*http.Response, error) {
	data, err := json.Marshal(body)
	if err != nil {
		return nil, err
	}
	return c.http.Post(c.base+path, "application/json", bytes.NewReader(data))
}

func decodeResponse(resp *http.Response, v interface{}) error {
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		var body map[string]interface{}
		_ = json.NewDecoder(resp.Body).Decode(&body)
		return fmt.Errorf("instance returned %s: %v", resp.Status, body["error"])
	}
	if v == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(v)
}

func applySystem(c *applyClient, resource *arrayResource) error {
	fmt.Println("Creating system")
	resp, err := c.post("/system", map[string]interface{}{
		"max_throughput": getFloat(resource.Spec, "maxThroughput", 0),
		"max_capacity":   getFloat(resource.Spec, "maxCapacity", 0),
	})
	if err != nil {
		return fmt.Errorf("failed to create system: %w", err)
	}
	var created map[string]interface{}
	if err := decodeResponse(resp, &created); err != nil {
		return err
	}
	fmt.Printf("✓ System created: %v\n", created["system_id"])
	return nil
}

func applyHost(c *applyClient, resource *arrayResource) error {
	name := resource.Metadata.Name
	fmt.Printf("Creating host: %s\n", name)
	resp, err := c.post("/host", map[string]interface{}{
		"system_id":        getString(resource.Spec, "systemId", ""),
		"name":             name,
		"application_type": getString(resource.Spec, "applicationType", ""),
		"protocol":         getString(resource.Spec, "protocol", ""),
	})
	if err != nil {
		return fmt.Errorf("failed to create host: %w", err)
	}
	var created map[string]interface{}
	if err := decodeResponse(resp, &created); err != nil {
		return err
	}
	fmt.Printf("✓ Host created: %s (ID: %v)\n", name, created["id"])
	return nil
}

func applyVolume(c *applyClient, resource *arrayResource) error {
	name := resource.Metadata.Name
	fmt.Printf("Creating volume: %s\n", name)
	resp, err := c.post("/volume", map[string]interface{}{
		"system_id": getString(resource.Spec, "systemId", ""),
		"name":      name,
		"size":      getInt(resource.Spec, "size", 1),
	})
	if err != nil {
		return fmt.Errorf("failed to create volume: %w", err)
	}
	var created map[string]interface{}
	if err := decodeResponse(resp, &created); err != nil {
		return err
	}
	fmt.Printf("✓ Volume created: %s (ID: %v)\n", name, created["id"])

	if hostID := getString(resource.Spec, "exportToHost", ""); hostID != "" {
		fmt.Printf("Exporting volume %s to host %s\n", name, hostID)
		resp, err := c.post("/export-volume", map[string]interface{}{
			"volume_id":     created["id"],
			"host_id":       hostID,
			"workload_size": getInt(resource.Spec, "workloadSize", 0),
		})
		if err != nil {
			return fmt.Errorf("failed to export volume: %w", err)
		}
		if err := decodeResponse(resp, nil); err != nil {
			return err
		}
		fmt.Printf("✓ Volume exported: %s\n", name)
	}
	return nil
}

func applySetting(c *applyClient, resource *arrayResource) error {
	name := resource.Metadata.Name
	fmt.Printf("Creating setting: %s\n", name)
	body := map[string]interface{}{
		"system_id":               getString(resource.Spec, "systemId", ""),
		"name":                    name,
		"type":                    getString(resource.Spec, "type", ""),
		"value":                   getInt(resource.Spec, "value", 0),
		"max_snapshots":           getInt(resource.Spec, "maxSnapshots", 0),
		"replication_type":        getString(resource.Spec, "replicationType", ""),
		"delay_sec":               getInt(resource.Spec, "delaySec", 0),
		"replication_target_id":   getString(resource.Spec, "replicationTargetId", ""),
		"replication_target_name": getString(resource.Spec, "replicationTargetName", ""),
	}
	resp, err := c.post("/settings", body)
	if err != nil {
		return fmt.Errorf("failed to create setting: %w", err)
	}
	var created map[string]interface{}
	if err := decodeResponse(resp, &created); err != nil {
		return err
	}
	fmt.Printf("✓ Setting created: %s (ID: %v)\n", name, created["id"])
	return nil
}

func getString(m map[string]interface{}, key, defaultValue string) string {
	if v, ok := m[key]; ok {
		return fmt.Sprintf("%v", v)
	}
	return defaultValue
}

func getInt(m map[string]interface{}, key string, defaultValue int) int {
	if v, ok := m[key]; ok {
		switch val := v.(type) {
		case int:
			return val
		case float64:
			return int(val)
		}
	}
	return defaultValue
}

func getFloat(m map[string]interface{}, key string, defaultValue float64) float64 {
	if v, ok := m[key]; ok {
		switch val := v.(type) {
		case float64:
			return val
		case int:
			return float64(val)
		}
	}
	return defaultValue
}
