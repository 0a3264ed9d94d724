package schema

// applicationAttributes are stored under the machine-wide root.
func applicationAttributes() []AttributeDefinition {
	return []AttributeDefinition{
		flagAttr(ScopeApplication, "safe_mode", false, "Load the layer with every feature disabled"),
		flagAttr(ScopeApplication, "experimental_mode", false, "Enable features marked experimental"),
		enumAttr(ScopeApplication, "key_menu", VirtualKey, "F2", "Key that opens the in-headset menu"),
		enumAttr(ScopeApplication, "key_up", VirtualKey, "F1", "Menu key: previous entry"),
		enumAttr(ScopeApplication, "key_down", VirtualKey, "F3", "Menu key: next entry"),
		enumAttr(ScopeApplication, "key_left", VirtualKey, "Left", "Menu key: decrease value"),
		enumAttr(ScopeApplication, "key_right", VirtualKey, "Right", "Menu key: increase value"),
		enumAttr(ScopeApplication, "key_screenshot", VirtualKey, "F12", "Key that captures a screenshot"),
		flagAttr(ScopeApplication, "key_ctrl_modifier", true, "Menu keys require Ctrl"),
		flagAttr(ScopeApplication, "key_alt_modifier", false, "Menu keys require Alt"),
		listAttr(ScopeApplication, "disabled_applications", "Executables the layer refuses to load into"),
	}
}

// moduleAttributes are stored per game under the per-user root.
func moduleAttributes() []AttributeDefinition {
	return []AttributeDefinition{
		enumAttr(ScopeModule, "first_run2", FirstRun, "Off", "First-run banner state"),
		enumAttr(ScopeModule, "overlay", OverlayType, "Off", "Performance overlay"),
		enumAttr(ScopeModule, "overlay_show_clock", OnOff, "Off", "Show a clock in the overlay"),
		enumAttr(ScopeModule, "expert_menu", OnOff, "Off", "Show expert menu entries"),
		enumAttr(ScopeModule, "scaling_type", ScalingType, "Off", "Upscaling algorithm"),
		intAttr(ScopeModule, "scaling", 25, 400, 100, "Upscaling input resolution (percent)"),
		intAttr(ScopeModule, "sharpness", 0, 100, 20, "Upscaler sharpness (percent)"),
		enumAttr(ScopeModule, "override_resolution", OnOff, "Off", "Override the runtime render resolution"),
		intAttr(ScopeModule, "override_resolution_width", 0, 16384, 0, "Render width when overriding resolution"),
		intAttr(ScopeModule, "override_resolution_height", 0, 16384, 0, "Render height when overriding resolution"),
		enumAttr(ScopeModule, "vrs", VariableShadingRateType, "Off", "Fixed foveated rendering mode"),
		enumAttr(ScopeModule, "vrs_inner", VRSRatio, "x1", "Shading rate of the inner ring"),
		enumAttr(ScopeModule, "vrs_middle", VRSRatio, "x1_4", "Shading rate of the middle ring"),
		enumAttr(ScopeModule, "vrs_outer", VRSRatio, "x1_16", "Shading rate of the outer ring"),
		enumAttr(ScopeModule, "vrs_cull_mask", OnOff, "On", "Cull the hidden area mask"),
		enumAttr(ScopeModule, "turbo", OnOff, "Off", "Turbo mode"),
		enumAttr(ScopeModule, "motion_reprojection", DefaultOnOff, "Default", "Motion reprojection (Windows Mixed Reality)"),
		enumAttr(ScopeModule, "motion_reprojection_rate", MotionReprojectionRate, "Off", "Locked motion reprojection rate"),
		enumAttr(ScopeModule, "post_process", OnOff, "Off", "Post-processing"),
		enumAttr(ScopeModule, "post_sunglasses", PostSunGlasses, "Off", "Sunglasses filter"),
		intAttr(ScopeModule, "brightness", 0, 1000, 500, "Post-processing brightness"),
		intAttr(ScopeModule, "contrast", 0, 1000, 500, "Post-processing contrast"),
		intAttr(ScopeModule, "saturation", 0, 1000, 500, "Post-processing saturation"),
		intAttr(ScopeModule, "fov", 50, 150, 100, "Field of view (percent)"),
		intAttr(ScopeModule, "zoom", 10, 150, 10, "Zoom factor (tenths)"),
	}
}

func enumAttr(scope Scope, name string, legal []LegalValue, def, desc string) AttributeDefinition {
	d := AttributeDefinition{
		Name:              name,
		RegistryValueName: name,
		Type:              TypeEnumeratedInteger,
		Scope:             scope,
		Legal:             legal,
		Description:       desc,
	}
	// An unknown default label is left zero-valued and rejected by New.
	if lv, ok := d.LegalByLabel(def); ok {
		d.Default = EnumValue(lv)
	}
	return d
}

func intAttr(scope Scope, name string, lo, hi, def int64, desc string) AttributeDefinition {
	return AttributeDefinition{
		Name:              name,
		RegistryValueName: name,
		Type:              TypeInteger,
		Scope:             scope,
		Default:           IntValue(def),
		Min:               &lo,
		Max:               &hi,
		Description:       desc,
	}
}

func flagAttr(scope Scope, name string, def bool, desc string) AttributeDefinition {
	return AttributeDefinition{
		Name:              name,
		RegistryValueName: name,
		Type:              TypeFlag,
		Scope:             scope,
		Default:           FlagValue(def),
		Description:       desc,
	}
}

func listAttr(scope Scope, name, desc string) AttributeDefinition {
	return AttributeDefinition{
		Name:              name,
		RegistryValueName: name,
		Type:              TypeStringList,
		Scope:             scope,
		Default:           StringListValue(),
		Description:       desc,
	}
}
