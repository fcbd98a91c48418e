package strategy

// Topic is a synthesized option that opens a knowledge concept.
type Topic struct {
	Text      string
	ConceptID string
	DomainID  string
}

// MentorContent is the canned text a mentor uses for synthesized options.
type MentorContent struct {
	Reframe struct {
		Narration string
		Options   [2]string
	}
	Extrapolate struct {
		Narration string
		Options   [2]Topic
	}
	Boast struct {
		Narration     string
		Expert        Topic
		Overconfident string
	}
	Synthesis struct {
		Narration string
		Options   [3]Topic
	}
}

// Catalog maps character IDs to their content.
type Catalog map[string]MentorContent

// GenericCharacterID keys the content used for unrecognised characters.
const GenericCharacterID = "generic"

// Lookup returns the content for characterID, falling back to the generic content.
func (c Catalog) Lookup(characterID string) MentorContent {
	if content, ok := c[characterID]; ok {
		return content
	}
	if content, ok := c[GenericCharacterID]; ok {
		return content
	}
	return genericContent()
}

// DefaultCatalog returns the reference content for the four teaching mentors.
func DefaultCatalog() Catalog {
	return Catalog{
		GenericCharacterID: genericContent(),
		"kapoor":           kapoorContent(),
		"quinn":            quinnContent(),
		"jesse":            jesseContent(),
		"garcia":           garciaContent(),
	}
}

func genericContent() MentorContent {
	var c MentorContent
	c.Reframe.Narration = "*You pause and refocus on the fundamentals.*"
	c.Reframe.Options = [2]string{
		"Could we step back to the underlying principle?",
		"Let me restate the question more precisely.",
	}
	c.Extrapolate.Narration = "*You notice a connection to a neighbouring field.*"
	c.Extrapolate.Options = [2]Topic{
		{Text: "Does this relate to how we image the same anatomy?", ConceptID: "image-guidance", DomainID: "imaging"},
		{Text: "How would this change the treatment plan itself?", ConceptID: "plan-robustness", DomainID: "treatment-planning"},
	}
	c.Boast.Narration = "*You lean in, confident you know where this is going.*"
	c.Boast.Expert = Topic{Text: "I can walk through the full derivation, including the edge cases.", ConceptID: "first-principles", DomainID: "physics"}
	c.Boast.Overconfident = "Honestly, this is the easy part. It always works out the same way."
	c.Synthesis.Narration = "*A new aspect of the problem comes into view.*"
	c.Synthesis.Options = [3]Topic{
		{Text: "What happens at the boundaries of the model?", ConceptID: "model-limits", DomainID: "physics"},
		{Text: "How do we verify this in practice?", ConceptID: "verification", DomainID: "quality-assurance"},
		{Text: "What does this mean for the patient?", ConceptID: "clinical-impact", DomainID: "radiation-oncology"},
	}
	return c
}

func kapoorContent() MentorContent {
	var c MentorContent
	c.Reframe.Narration = "*Dr. Kapoor taps the chamber reading. \"Start from what we measured.\"*"
	c.Reframe.Options = [2]string{
		"Could you show me how the reading relates to absorbed dose?",
		"Let me check the correction factors one at a time.",
	}
	c.Extrapolate.Narration = "*Dr. Kapoor raises an eyebrow. \"Go on. Where does that lead?\"*"
	c.Extrapolate.Options = [2]Topic{
		{Text: "The same calibration chain must govern our brachytherapy sources.", ConceptID: "source-strength", DomainID: "brachytherapy"},
		{Text: "Output drift would show up in the daily QA trend first.", ConceptID: "trend-analysis", DomainID: "quality-assurance"},
	}
	c.Boast.Narration = "*Dr. Kapoor folds her arms. \"Prove it.\"*"
	c.Boast.Expert = Topic{Text: "Temperature, pressure, polarity and recombination: here is each correction with its magnitude.", ConceptID: "tg51-corrections", DomainID: "dosimetry"}
	c.Boast.Overconfident = "The chamber is calibrated, so the reading is the dose. No corrections needed."
	c.Synthesis.Narration = "*Dr. Kapoor nods slowly. \"Now you are seeing the whole chain.\"*"
	c.Synthesis.Options = [3]Topic{
		{Text: "How traceable is our standard back to the national lab?", ConceptID: "traceability", DomainID: "dosimetry"},
		{Text: "Which uncertainties dominate the final dose?", ConceptID: "uncertainty-budget", DomainID: "dosimetry"},
		{Text: "How would an independent audit catch our errors?", ConceptID: "external-audit", DomainID: "quality-assurance"},
	}
	return c
}

func quinnContent() MentorContent {
	var c MentorContent
	c.Reframe.Narration = "*Dr. Quinn sketches a single line on the whiteboard. \"Simpler.\"*"
	c.Reframe.Options = [2]string{
		"I may have overcomplicated it. What is the first-order effect?",
		"Can we define the terms exactly before going further?",
	}
	c.Extrapolate.Narration = "*Dr. Quinn's eyes light up. \"Ah, a tangent worth chasing.\"*"
	c.Extrapolate.Options = [2]Topic{
		{Text: "Doesn't the same interaction explain contrast in diagnostic imaging?", ConceptID: "photoelectric-effect", DomainID: "imaging"},
		{Text: "Then the beam spectrum must harden with depth.", ConceptID: "beam-hardening", DomainID: "physics"},
	}
	c.Boast.Narration = "*Dr. Quinn caps the marker. \"All right, the floor is yours.\"*"
	c.Boast.Expert = Topic{Text: "Compton dominates here; let me derive the energy dependence of the cross-section.", ConceptID: "compton-scattering", DomainID: "physics"}
	c.Boast.Overconfident = "Pair production, obviously. It dominates at every clinical energy."
	c.Synthesis.Narration = "*Dr. Quinn steps back from the board. \"Look at what you've built.\"*"
	c.Synthesis.Options = [3]Topic{
		{Text: "How does attenuation couple to the build-up region?", ConceptID: "build-up", DomainID: "physics"},
		{Text: "Could Monte Carlo capture what the analytic model misses?", ConceptID: "monte-carlo", DomainID: "treatment-planning"},
		{Text: "Where does the model break down in heterogeneous tissue?", ConceptID: "heterogeneity", DomainID: "treatment-planning"},
	}
	return c
}

func jesseContent() MentorContent {
	var c MentorContent
	c.Reframe.Narration = "*Jesse wipes their hands on a rag. \"Let's look at the hardware.\"*"
	c.Reframe.Options = [2]string{
		"What part of the linac would I check first?",
		"Could you point to exactly where that interlock sits?",
	}
	c.Extrapolate.Narration = "*Jesse grins. \"Now you're thinking like an engineer.\"*"
	c.Extrapolate.Options = [2]Topic{
		{Text: "If the magnetron drifts, the imaging panel would see it too.", ConceptID: "rf-power", DomainID: "linac-engineering"},
		{Text: "So MLC leaf wear would show up in the patient QA results.", ConceptID: "mlc-wear", DomainID: "quality-assurance"},
	}
	c.Boast.Narration = "*Jesse hands you the service manual. \"Go ahead, fix it.\"*"
	c.Boast.Expert = Topic{Text: "The dose rate fault traces back to the ion chamber servo; here's how I'd verify it.", ConceptID: "dose-servo", DomainID: "linac-engineering"}
	c.Boast.Overconfident = "Just power-cycle it. That fixes everything on these machines."
	c.Synthesis.Narration = "*Jesse leans on the gantry. \"See how it all fits together?\"*"
	c.Synthesis.Options = [3]Topic{
		{Text: "How does the waveguide shape the energy spectrum?", ConceptID: "waveguide", DomainID: "linac-engineering"},
		{Text: "What does preventive maintenance buy us in uptime?", ConceptID: "maintenance", DomainID: "linac-engineering"},
		{Text: "How do the safety interlocks chain together?", ConceptID: "interlocks", DomainID: "radiation-safety"},
	}
	return c
}

func garciaContent() MentorContent {
	var c MentorContent
	c.Reframe.Narration = "*Dr. Garcia sets the chart down gently. \"Think about the person first.\"*"
	c.Reframe.Options = [2]string{
		"What would the patient experience during this treatment?",
		"Which organ at risk should I be most careful about here?",
	}
	c.Extrapolate.Narration = "*Dr. Garcia smiles. \"That's the kind of question the tumor board asks.\"*"
	c.Extrapolate.Options = [2]Topic{
		{Text: "Would fractionation change the biological effect on the tumor?", ConceptID: "fractionation", DomainID: "radiobiology"},
		{Text: "Could imaging response guide an adaptive replan?", ConceptID: "adaptive-therapy", DomainID: "imaging"},
	}
	c.Boast.Narration = "*Dr. Garcia turns the monitor toward you. \"Walk me through your plan.\"*"
	c.Boast.Expert = Topic{Text: "Target coverage, spinal cord tolerance and the parotid trade-off: here is how I'd balance them.", ConceptID: "dose-constraints", DomainID: "radiation-oncology"}
	c.Boast.Overconfident = "Coverage is all that matters. The normal tissue will recover."
	c.Synthesis.Narration = "*Dr. Garcia nods. \"Now you're seeing the whole patient.\"*"
	c.Synthesis.Options = [3]Topic{
		{Text: "How do we weigh tumor control against toxicity?", ConceptID: "therapeutic-ratio", DomainID: "radiobiology"},
		{Text: "What follow-up would catch late effects?", ConceptID: "late-effects", DomainID: "radiation-oncology"},
		{Text: "How should we explain the plan to the patient?", ConceptID: "informed-consent", DomainID: "radiation-oncology"},
	}
	return c
}
