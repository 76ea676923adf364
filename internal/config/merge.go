package config

// MergeScalars layers overlay's scalar fields on top of base: any field the
// overlay sets replaces the base value, anything unset falls through. Lists
// like enabledMcpjsonServers replace wholesale; they are configuration
// choices, not contributions to accumulate. Permissions, hooks, env, and
// commands are merged by their own components and are not touched here.
func MergeScalars(base, overlay *Document) *Document {
	out := base.Clone()
	if out == nil {
		out = &Document{}
	}
	if overlay == nil {
		return out
	}

	if overlay.Model != "" {
		out.Model = overlay.Model
	}
	if overlay.APIKeyHelper != "" {
		out.APIKeyHelper = overlay.APIKeyHelper
	}
	if overlay.CleanupPeriodDays != nil {
		out.CleanupPeriodDays = overlay.CleanupPeriodDays
	}
	if overlay.IncludeCoAuthoredBy != nil {
		out.IncludeCoAuthoredBy = overlay.IncludeCoAuthoredBy
	}
	if overlay.StatusLine != nil {
		out.StatusLine = overlay.StatusLine
	}
	if overlay.ForceLoginMethod != "" {
		out.ForceLoginMethod = overlay.ForceLoginMethod
	}
	if overlay.ForceLoginOrgUUID != "" {
		out.ForceLoginOrgUUID = overlay.ForceLoginOrgUUID
	}
	if overlay.EnableAllProjectMcpServers != nil {
		out.EnableAllProjectMcpServers = overlay.EnableAllProjectMcpServers
	}
	if overlay.EnabledMcpjsonServers != nil {
		out.EnabledMcpjsonServers = append([]string(nil), overlay.EnabledMcpjsonServers...)
	}
	if overlay.DisabledMcpjsonServers != nil {
		out.DisabledMcpjsonServers = append([]string(nil), overlay.DisabledMcpjsonServers...)
	}
	return out
}

// MergeEnv merges environment maps left to right; later layers win per key.
func MergeEnv(layers ...map[string]string) map[string]string {
	out := make(map[string]string)
	for _, layer := range layers {
		for k, v := range layer {
			out[k] = v
		}
	}
	return out
}
