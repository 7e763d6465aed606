// Package hallmarks holds the static reference data for the eleven hallmarks
// of aging: display names, classifier labels, prompt descriptions, curated
// reference gene sets and the longevity-associated gene set. The data is
// loaded once and treated as immutable for the process lifetime.
package hallmarks

// Names lists the eleven hallmarks in their canonical order. Every
// DiseaseAnnotation carries a score entry for each of these, even when the
// score is zero.
var Names = []string{
	"Genomic instability",
	"Telomere attrition",
	"Epigenetic alterations",
	"Loss of proteostasis",
	"Disabled macroautophagy",
	"Deregulated nutrient sensing",
	"Mitochondrial dysfunction",
	"Cellular senescence",
	"Stem cell exhaustion",
	"Altered intercellular communication",
	"Chronic inflammation",
}

// Labels are the underscore forms the classification oracle is asked to
// answer with. Index-aligned with Names.
var Labels = []string{
	"Genomic_instability",
	"Telomere_attrition",
	"Epigenetic_alterations",
	"Loss_of_proteostasis",
	"Disabled_macroautophagy",
	"Deregulated_nutrient_sensing",
	"Mitochondrial_dysfunction",
	"Cellular_senescence",
	"Stem_cell_exhaustion",
	"Altered_intercellular_communication",
	"Chronic_inflammation",
}

// Descriptions gives the classification oracle a paragraph of biological
// context per hallmark, keyed by label. Prompt text, not display text.
var Descriptions = map[string]string{
	"Genomic_instability": `The accumulation of genetic damage throughout life from both exogenous sources (chemicals, radiation, physical stressors) and endogenous challenges (DNA replication errors, reactive oxygen species, spontaneous hydrolytic reactions). This includes point mutations, deletions, translocations, chromosomal rearrangements, and gene disruptions. Genomic instability is characterized by declining efficiency of DNA repair mechanisms with age, affecting nuclear and mitochondrial DNA integrity. Key processes include nuclear architecture maintenance, DNA damage response pathways, and prevention of cytosolic DNA accumulation.`,
	"Telomere_attrition": `The progressive shortening of telomeres (protective DNA sequences at chromosome ends) that occurs with each cell division due to the inability of DNA polymerase to completely replicate chromosome ends. When telomeres become critically short, cells undergo senescence or apoptosis. Telomere attrition causes genomic instability, impairs tissue regeneration, and is accelerated by oxidative stress. Telomerase, which can counteract telomere shortening, is not expressed in most somatic cells but its activation can extend lifespan in experimental models.`,
	"Epigenetic_alterations": `Age-associated changes in epigenetic patterns that affect gene expression without altering DNA sequence. These include alterations in DNA methylation (global hypomethylation with site-specific hypermethylation), histone modifications (e.g., changes in acetylation and methylation patterns), chromatin remodeling (heterochromatin loss and redistribution), and deregulated expression of non-coding RNAs. Age-related epigenetic changes also include the derepression of retrotransposable elements.`,
	"Loss_of_proteostasis": `The progressive failure of protein homeostasis systems with age, leading to accumulation of misfolded, oxidized, or otherwise damaged proteins. This involves deterioration of protein quality control mechanisms including chaperone-mediated folding, the ubiquitin-proteasome system, and lysosomal degradation pathways. Loss of proteostasis is characterized by protein aggregation and inclusion body formation.`,
	"Disabled_macroautophagy": `The age-related decline in macroautophagy, a critical cellular process for degrading and recycling dysfunctional organelles, protein aggregates, and other cytoplasmic components via their sequestration in autophagosomes and subsequent fusion with lysosomes. Disabled macroautophagy leads to accumulation of cellular waste and damaged components, particularly affecting long-lived post-mitotic cells. This process is distinct from other forms of autophagy like chaperone-mediated autophagy.`,
	"Deregulated_nutrient_sensing": `The progressive dysfunction of nutrient-sensing pathways that coordinate cellular and systemic responses to nutrient availability. Key pathways include insulin/IGF-1 signaling, mTOR (mechanistic target of rapamycin), AMPK (AMP-activated protein kinase), and sirtuins. During aging, these pathways become less responsive to nutritional signals, resulting in metabolic imbalances. Caloric restriction and other dietary interventions that modulate these pathways can extend lifespan in various model organisms.`,
	"Mitochondrial_dysfunction": `The age-related decline in mitochondrial function characterized by reduced respiratory efficiency, increased production of reactive oxygen species (ROS), accumulation of mitochondrial DNA mutations, altered mitochondrial dynamics (fusion/fission), and impaired mitophagy. Mitochondrial dysfunction leads to cellular energy deficits, oxidative damage to cellular components, and can trigger stress responses when mitochondrial components leak into the cytosol.`,
	"Cellular_senescence": `The state of stable cell cycle arrest combined with phenotypic changes including secretion of pro-inflammatory cytokines, growth factors, and matrix-remodeling enzymes (the senescence-associated secretory phenotype or SASP). Cellular senescence increases with age in multiple tissues and can be triggered by telomere shortening, DNA damage, oncogene activation, or other stressors. While senescence serves as a tumor-suppressive mechanism and aids in wound healing, accumulation of senescent cells contributes to tissue dysfunction and chronic inflammation.`,
	"Stem_cell_exhaustion": `The age-related decline in stem cell function across tissues, resulting in reduced regenerative capacity and impaired tissue maintenance. This involves decreased self-renewal abilities, impaired differentiation potential, and diminished responsiveness to tissue needs. Stem cell exhaustion is influenced by intrinsic changes within stem cells themselves (DNA damage, epigenetic alterations, proteostatic decline) and changes in the stem cell niche and systemic environment.`,
	"Altered_intercellular_communication": `Age-associated changes in how cells signal to each other, including endocrine, neuroendocrine, and neuronal signaling. This encompasses changes in the systemic milieu (circulating factors), extracellular matrix composition and stiffness, and cell-to-cell contact-dependent communication.`,
	"Chronic_inflammation": `The persistent, low-grade, sterile inflammation that develops with age ("inflammaging"), characterized by elevated levels of pro-inflammatory cytokines (IL-6, TNF-alpha, IL-1beta) and acute phase proteins like C-reactive protein (CRP). This results from various sources, including accumulation of cellular debris, activation of the innate immune system by cytosolic DNA or other damage-associated molecular patterns, senescence-associated secretory phenotype (SASP), and declining immunosurveillance.`,
}

var labelToName = func() map[string]string {
	m := make(map[string]string, len(Labels))
	for i, l := range Labels {
		m[l] = Names[i]
	}
	return m
}()

var nameToLabel = func() map[string]string {
	m := make(map[string]string, len(Names))
	for i, n := range Names {
		m[n] = Labels[i]
	}
	return m
}()

// NameForLabel converts a classifier label to the display name, returning
// false for labels outside the fixed set.
func NameForLabel(label string) (string, bool) {
	n, ok := labelToName[label]
	return n, ok
}

// LabelForName converts a display name to the classifier label.
func LabelForName(name string) (string, bool) {
	l, ok := nameToLabel[name]
	return l, ok
}

// GeneSets maps each hallmark display name to its curated reference gene
// set. Symbols follow the source literature, so a few entries are complexes
// or non-HGNC aliases; overlap against them simply never matches.
func GeneSets() map[string]map[string]bool {
	out := make(map[string]map[string]bool, len(Names))
	for name, genes := range referenceGenes {
		set := make(map[string]bool, len(genes))
		for _, g := range genes {
			set[g] = true
		}
		out[name] = set
	}
	return out
}

// LongevityGenes returns the set of genes with significant longevity
// associations in the reference dataset.
func LongevityGenes() map[string]bool {
	set := make(map[string]bool, len(longevityGenes))
	for _, g := range longevityGenes {
		set[g] = true
	}
	return set
}

var referenceGenes = map[string][]string{
	"Genomic instability": {
		"BUBR1", "SIRT6", "LMNA", "BANF1", "ZMPSTE24", "TP53", "ERCC1",
		"DNMT3", "TET2", "ABL1", "AKT1", "CASP1", "CASP3", "CASP8", "CAT",
		"CHUK", "CNOT6L", "CSNK1A1", "DNMT1", "DUSP3", "EGFR", "EP300",
		"ESR1", "HDAC1", "HGF", "IGF1", "IGF1R", "IKBKB", "IL1B", "JAK2",
		"KDR", "MAPK8", "MMP9", "MTOR", "PARP1", "PTEN", "PTK2", "RAB32",
		"RNF126", "ROCK1", "SIRT1",
	},
	"Telomere attrition": {
		"TERT", "TERC", "DDX21", "DNMT1", "IL1B", "MTOR", "PARP1", "POLA1",
		"SIRT1", "TGS1", "TNF",
	},
	"Epigenetic alterations": {
		"KAT7", "SIRT1", "SIRT3", "SIRT6", "SIRT7", "DNMT3", "TET2", "HP1a",
		"PIN1", "miR-188-3p", "miR-455-3p", "LINE1", "AKT1", "DNMT1",
		"EP300", "EZH2", "HDAC1", "HDAC9", "IGF1", "KAT6A", "KAT8", "KDM7A",
		"MTOR", "MYO1C",
	},
	"Loss of proteostasis": {
		"LAMP2A", "HSP70", "HSC70", "RPS23", "RPS9", "eIF2a", "UPR", "AKT1",
		"CDC34", "EGFR", "GAK", "HGF", "HSPA5", "IGF1", "IKBKB", "IL6",
		"MAPK1", "MAPK14", "MTOR", "PPARA", "PRKAG1", "PSMD14", "RAB13",
		"RAB31", "RAB33B", "RAB7A", "RAB7B", "RAB8B", "RNF5", "TLR2",
		"UCHL5", "UBE2E3", "UBE2M", "UBE2O", "UBE4A", "USP2", "VDR", "WWP1",
	},
	"Disabled macroautophagy": {
		"ATG5", "ATG7", "BECN1", "TFEB", "EP300", "eIF5A", "mTORC1", "SIRT1",
		"GAK", "HSPA5", "PRKAG1", "PSMD14", "RAB13", "RAB31", "RAB33B",
		"RAB7A", "RAB7B", "RAB8B", "RNF5", "USP2",
	},
	"Deregulated nutrient sensing": {
		"GH", "IGF1", "IGF1R", "PI3K", "AKT", "mTORC1", "AMPK", "SIRT1",
		"FOXO3", "ALK", "PLA2G7", "AKT1", "BLK", "CD36", "EGFR", "FGF2",
		"HGF", "IGF2", "IMPDH2", "INSR", "ITGAV", "KDR", "KIT", "MTOR",
		"NGF", "PIP5K1A", "PTEN", "RAB13", "RAB4B", "RRAGD", "VEGFA",
	},
	"Mitochondrial dysfunction": {
		"mtDNA", "TFAM", "SIRT3", "POLG", "NAD+", "MOTS-c", "Humanin",
		"AKT1", "ARL2", "ATAD3B", "GAK", "HGF", "HSPA5", "IGF1", "IGF1R",
		"IL1B", "IL6", "ITGB2", "MTHFD2", "MTOR", "OLA1", "PRKAG1",
		"PSMD14", "RAB13", "RAB31", "RAB32", "RAB33B", "RAB7A", "RAB7B",
		"RAB8B", "RHOT1", "RHOT2", "RNF14", "RNF5", "SOD2", "SRC", "TLR4",
		"USP2",
	},
	"Cellular senescence": {
		"CDKN2A", "TP53", "CDKN1A", "RB1", "LMNB1", "HMGB1", "GPNMB",
		"uPAR", "SASP", "FOXM1", "AKT1", "AR", "CHUK", "CNOT6L", "DUSP3",
		"EGFR", "EGLN1", "EP300", "EZH2", "HDAC6", "HGF", "IGF1", "IKBKB",
		"IL6", "JAK2", "KAT6A", "MMP1", "MTOR", "MYSM1", "PARP1", "PTEN",
		"PTK2", "ROCK1", "SRC", "TGFB1", "TGFBR2", "TNIK", "UBE2E3",
	},
	"Stem cell exhaustion": {
		"OCT4", "SOX2", "KLF4", "MYC", "OSKM", "OSK", "AKT1", "BMP2",
		"CXCL12", "CXCR4", "DNMT1", "EGLN1", "EP300", "FGF2", "GSK3B",
		"HGF", "IGF1", "IGF1R", "IGF2", "IKBKB", "IL1B", "IL6", "KAT6A",
		"MAPK14", "MTOR", "MYSM1", "NME7", "PPARA", "RAB5C", "ROCK1",
		"SETD1B", "SIRT1", "SPP1", "TGFB1", "TNIK", "UBE2E3",
	},
	"Altered intercellular communication": {
		"CCL11", "B2M", "IL6", "TGFB", "CCL3", "TIMP2", "IL37", "GDF11",
		"VEGF", "YAP", "TAZ", "AAK1", "ADAM17", "AKT1", "CHD9", "CXCL12",
		"EGLN1", "FZD8", "GSK3B", "HGF", "IGF1", "IMPDH2", "ITGAV", "ITGB5",
		"JAK2", "KDM7A", "MIB2", "MMP1", "MTMR4", "MTOR", "NOTCH1", "PJA2",
		"PPIL4", "PPM1A", "RAB5C", "RAB8B", "RHOA", "RHOU", "SIRT1",
		"TGFB1", "TNIK", "TNF", "UBE2M", "USP2",
	},
	"Chronic inflammation": {
		"TNFA", "IFNAR1", "EP2", "NLRP3", "IL1B", "IL6", "CRP", "CHIP",
		"AKT1", "AR", "BRCC3", "CASP1", "CASP3", "CASP8", "CD36", "CLEC5A",
		"CSNK1A1", "CXCL12", "CXCR4", "DDX17", "DNMT1", "EGFR", "EGLN1",
		"EZH2", "HCK", "HGF", "IKBKB", "IGF1", "IGF1R", "ITGAM", "ITK",
		"JAK1", "JAK2", "KDR", "LOX", "LPIN2", "LYN", "MAPK1", "MMP2",
		"MTOR", "MYSM1", "NEK7", "PELI1", "PPM1A", "RAB7B", "RNF125",
		"SIRT1", "SPP1", "TLR2", "TLR4", "TNF", "UCHL5", "VDR", "VEGFA",
	},
}

// Genes with a significant association in the longevity reference dataset.
var longevityGenes = []string{
	"APOE", "FOXO3", "CETP", "IL6", "SIRT1", "IGF1R", "KLOTHO", "KL",
	"TP53", "CDKN2A", "CDKN2B", "ACE", "APOC3", "ADIPOQ", "TERT", "TERC",
	"GHR", "INSR", "AKT1", "FOXO1", "MTOR", "PON1", "SOD2", "TNF",
	"IL10", "HLA-DQA1", "HLA-DRB1", "ABO", "CHRNA3", "CHRNA5", "LPA",
	"USP42", "TMTC2", "ANKRD20A9P", "RAD50", "NECTIN2", "TOMM40",
	"BCL2", "ATM", "WRN", "LMNA", "EXO1", "PARK7", "UCP2", "UCP3",
}
